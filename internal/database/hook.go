package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// slowQueryHook logs statements that run longer than threshold, and every failed statement.
type slowQueryHook struct {
	logger    *zap.Logger
	threshold time.Duration
}

var _ bun.QueryHook = (*slowQueryHook)(nil)

func newSlowQueryHook(logger *zap.Logger, threshold time.Duration) *slowQueryHook {
	return &slowQueryHook{logger: logger, threshold: threshold}
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)

	switch {
	case event.Err != nil && !isBenign(event.Err):
		h.logger.Warn("query failed",
			zap.String("operation", event.Operation()),
			zap.Duration("elapsed", elapsed),
			zap.Error(event.Err),
		)
	case elapsed >= h.threshold:
		h.logger.Warn("slow query",
			zap.String("operation", event.Operation()),
			zap.Duration("elapsed", elapsed),
			zap.String("query", event.Query),
		)
	}
}
