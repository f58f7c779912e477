package notifier

import (
	"context"

	"github.com/shopspring/decimal"
)

// Notifier delivers best-effort player messages. Failures are logged by
// callers and never roll back the economic state change that triggered
// them.
type Notifier interface {
	NotifyTrainingComplete(ctx context.Context, telegramID int64, petName string, rewardEstimate decimal.Decimal) error
	NotifyEvolved(ctx context.Context, telegramID int64, petName string, totalEarned decimal.Decimal) error
}
