package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingWarmer struct {
	runs        atomic.Int32
	noDeadlines atomic.Int32
}

func (c *countingWarmer) Warm(ctx context.Context) {
	if _, ok := ctx.Deadline(); !ok {
		c.noDeadlines.Add(1)
	}
	c.runs.Add(1)
}

func TestCacheWarmer_RunsOnStartAndSchedule(t *testing.T) {
	w := &countingWarmer{}
	cw, err := NewCacheWarmer(w, "@every 1s", time.Second, nil)
	require.NoError(t, err)

	cw.Start()
	assert.Eventually(t, func() bool { return w.runs.Load() >= 2 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cw.Stop(ctx)

	assert.Zero(t, w.noDeadlines.Load(), "every run is bounded")
}

func TestCacheWarmer_InvalidSchedule(t *testing.T) {
	_, err := NewCacheWarmer(&countingWarmer{}, "every now and then", time.Second, nil)
	assert.ErrorContains(t, err, "invalid cache warm schedule")
}
