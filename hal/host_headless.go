//go:build !tinygo

package hal

import (
	"context"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// For bounds the run; zero means run until the context is canceled.
	For time.Duration
}

// RunHeadless runs the firmware core without opening a window. The HAL's
// own 1 kHz tick source keeps time; this just waits the run out.
func RunHeadless(ctx context.Context, run func(HAL), cfg HeadlessConfig) error {
	h := New().(*hostHAL)
	run(h)

	if cfg.For <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.For):
		return nil
	}
}
