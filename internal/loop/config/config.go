// Package config centralizes the frame driver and presentation constants.
// Gameplay tunables live in game.Config.
package config

import "time"

// Frame driver
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
)

// Max render resolution. Larger terminals get a centred, bordered area.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Presentation
const (
	InvulnerableBlinkHz = 5.0 // ship blink rate during the grace period
	PromptBlinkPeriod   = 600 * time.Millisecond
	HeartGlyph          = "♥"
)

// Spectator feed
const (
	SpectateFPS       = 15
	SpectateFrameTime = time.Second / SpectateFPS
	SpectateBuffer    = 4 // frames queued per viewer before dropping
)

// Shutdown
const (
	ShutdownGrace   = 15 * time.Second // time sessions get to finish on SIGTERM
	ServerCloseWait = 5 * time.Second
)
