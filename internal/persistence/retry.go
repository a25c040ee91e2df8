package persistence

import (
	"context"

	"github.com/avast/retry-go/v5"
	"go.uber.org/zap"
)

// pingWithRetry calls ping until it succeeds or attempts run out, backing off
// exponentially between tries.
func pingWithRetry(ctx context.Context, name string, attempts int, logger *zap.Logger, ping func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	tries := 0
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.DelayType(retry.BackOffDelay),
	)
	return r.Do(func() error {
		tries++
		err := ping(ctx)
		if err != nil {
			logger.Warn("store not reachable yet",
				zap.String("store", name),
				zap.Int("attempt", tries),
				zap.Error(err))
		}
		return err
	})
}
