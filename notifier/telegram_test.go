package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSendAbortsOnCancelledContext(t *testing.T) {
	n := NewTelegramNotifier("test-token", 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := n.NotifyTrainingComplete(ctx, 42, "Пиксель", decimal.NewFromFloat(1.5))
	require.ErrorIs(t, err, context.Canceled)
	// No request leaves and no retry backoff is waited out.
	require.Less(t, time.Since(start), time.Second)
}
