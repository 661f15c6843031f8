package workers

import (
	"context"
	"time"

	"auxchat_backend/internal/logger"
)

// runEvery вызывает job по тикеру до отмены ctx
func runEvery(ctx context.Context, name string, interval time.Duration, job func(context.Context) (int64, error)) {
	if interval <= 0 {
		logger.Warn("Worker disabled", "worker", name)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Worker started", "worker", name, "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped", "worker", name)
			return
		case <-ticker.C:
			_, _ = job(ctx)
		}
	}
}
