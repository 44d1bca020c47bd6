// Package loop drives games at a fixed frame rate with the
// Input → Tick → Render cycle, and hosts one game per connected terminal.
package loop

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tomz197/asteroidfield/internal/game"
	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/loop/config"
)

// Ticker is the part of game.Game the driver needs.
type Ticker interface {
	Tick(c game.Controls)
}

// Options tunes Run. Zero values use the defaults.
type Options struct {
	// FrameTime is the target duration of one frame.
	FrameTime time.Duration
	// RenderErr reports a fatal output error, e.g. a closed SSH channel.
	RenderErr func() error
}

// Run ticks g once per frame until the player quits, input ends, the
// renderer fails or ctx is cancelled. Quitting and cancellation are not
// errors.
func Run(ctx context.Context, g Ticker, stream *input.Stream, opts Options) error {
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = config.TargetFrameTime
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		frameStart := time.Now()

		// ===== INPUT PHASE =====
		in := input.ReadInput(stream)
		if in.Quit() {
			return nil
		}

		// ===== UPDATE + DRAW PHASE =====
		g.Tick(in)
		if opts.RenderErr != nil {
			if err := opts.RenderErr(); err != nil {
				return errors.Wrap(err, "render")
			}
		}

		// ===== FRAME TIMING =====
		if ctx.Err() != nil {
			return nil
		}
		wait := frameTime - time.Since(frameStart)
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}
