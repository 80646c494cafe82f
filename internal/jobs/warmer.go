// Package jobs runs background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Warmer refreshes cached queries. queries.Service implements it.
type Warmer interface {
	Warm(ctx context.Context)
}

// CacheWarmer re-runs hot queries on a schedule so visitors rarely wait on
// the content store.
type CacheWarmer struct {
	cron    *cron.Cron
	warmer  Warmer
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// NewCacheWarmer schedules w with a cron expression such as "@every 5m" or
// "*/10 * * * *". Each run is bounded by timeout.
func NewCacheWarmer(w Warmer, schedule string, timeout time.Duration, logger *zap.SugaredLogger) (*CacheWarmer, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	cw := &CacheWarmer{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		warmer:  w,
		timeout: timeout,
		logger:  logger,
	}

	if _, err := cw.cron.AddFunc(schedule, cw.run); err != nil {
		return nil, fmt.Errorf("invalid cache warm schedule %q: %w", schedule, err)
	}
	return cw, nil
}

func (cw *CacheWarmer) run() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), cw.timeout)
	defer cancel()

	cw.warmer.Warm(ctx)
	cw.logger.Debugw("cache warmed", "duration_ms", time.Since(start).Milliseconds())
}

// Start warms once in the background and starts the schedule.
func (cw *CacheWarmer) Start() {
	go cw.run()
	cw.cron.Start()
}

// Stop stops the schedule and waits for a running job until ctx ends.
func (cw *CacheWarmer) Stop(ctx context.Context) {
	select {
	case <-cw.cron.Stop().Done():
	case <-ctx.Done():
		cw.logger.Warnw("cache warmer did not stop in time")
	}
}
