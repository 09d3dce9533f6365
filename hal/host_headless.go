//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// RunFor stops the firmware after this long. Zero runs until ctx ends.
	RunFor time.Duration
}

// RunHeadless runs the firmware without opening a window.
func RunHeadless(ctx context.Context, cfg HeadlessConfig, hc HostConfig, run func(ctx context.Context, h HAL) error) error {
	if cfg.RunFor < 0 {
		return fmt.Errorf("invalid headless run time: %v", cfg.RunFor)
	}
	if cfg.RunFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunFor)
		defer cancel()
	}

	h := newHostHAL(hc)
	err := run(ctx, h)
	if err != nil && ctx.Err() != nil && cfg.RunFor > 0 {
		// Running out the clock is a normal end.
		return nil
	}
	return err
}
