package viewer

import (
	"context"
	"time"
)

// RenderLoop calls tick once per frame interval on a single goroutine, so
// ticks never overlap. A tick that overruns delays the next one rather than
// queueing.
type RenderLoop struct {
	interval time.Duration
	tick     func(now time.Time)
}

// NewRenderLoop creates a loop with the given frame interval.
func NewRenderLoop(interval time.Duration, tick func(now time.Time)) *RenderLoop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &RenderLoop{interval: interval, tick: tick}
}

// Run drives the loop until ctx is cancelled.
func (l *RenderLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			l.tick(now)
		}
	}
}
