package notifier

import (
	"context"

	"github.com/shopspring/decimal"
)

// NoopNotifier discards all notifications. Used when no bot token is
// configured and in tests.
type NoopNotifier struct{}

func (NoopNotifier) NotifyTrainingComplete(context.Context, int64, string, decimal.Decimal) error {
	return nil
}

func (NoopNotifier) NotifyEvolved(context.Context, int64, string, decimal.Decimal) error {
	return nil
}
