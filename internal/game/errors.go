package game

import "github.com/pkg/errors"

var (
	// ErrOverlappingSpawn means a spawn position stayed on top of an existing
	// body after every nudge, so the spawn was dropped.
	ErrOverlappingSpawn = errors.New("game: spawn overlaps an existing body")
	// ErrNotPlaying is returned by actions that need an active session.
	ErrNotPlaying = errors.New("game: no active session")
	// ErrNotGameOver is returned by Restart outside GameOver.
	ErrNotGameOver = errors.New("game: session is not over")
	// ErrRestartLocked is returned by Restart before the restart delay ends.
	ErrRestartLocked = errors.New("game: restart not allowed yet")
)
