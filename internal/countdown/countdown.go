// Package countdown computes the time left until a target instant and
// drives a once per second render loop until it reaches zero.
package countdown

import (
	"context"
	"fmt"
	"time"
)

// Parts is a remaining duration split into whole units. Under a second
// left shows as all zeros with Done still false.
type Parts struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Done    bool  `json:"-"`
}

// Remaining splits the millisecond delta between now and target with
// integer division. Done is set once the delta is zero or negative.
func Remaining(now, target time.Time) Parts {
	ms := target.Sub(now).Milliseconds()
	if ms <= 0 {
		return Parts{Done: true}
	}
	return Parts{
		Days:    ms / (1000 * 60 * 60 * 24),
		Hours:   ms / (1000 * 60 * 60) % 24,
		Minutes: ms / (1000 * 60) % 60,
		Seconds: ms / 1000 % 60,
	}
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock is the time source of Run.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// Run renders the remaining time immediately and then once per tick. Once
// the target is reached it renders nothing more and returns nil. It
// returns the context error if ctx ends first.
func Run(ctx context.Context, clock Clock, target time.Time, render func(Parts)) error {
	parts := Remaining(clock.Now(), target)
	if parts.Done {
		return nil
	}
	render(parts)

	ticker := clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C():
			parts = Remaining(now, target)
			if parts.Done {
				return nil
			}
			render(parts)
		}
	}
}

// ParseTarget accepts an RFC 3339 timestamp or a YYYY-MM-DD date, the
// latter at midnight UTC.
func ParseTarget(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid countdown target %q", s)
	}
	return t, nil
}

// NextAnniversary returns the next midnight on which date recurs after now,
// in now's location. Today's anniversary counts as passed.
func NextAnniversary(date, now time.Time) time.Time {
	this := time.Date(now.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	if this.After(now) {
		return this
	}
	return time.Date(now.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
}
