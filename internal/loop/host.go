package loop

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/tomz197/asteroidfield/internal/draw"
	"github.com/tomz197/asteroidfield/internal/game"
	"github.com/tomz197/asteroidfield/internal/input"
	"github.com/tomz197/asteroidfield/internal/physics"
	"github.com/tomz197/asteroidfield/internal/render"
	"github.com/tomz197/asteroidfield/internal/spectate"
)

// ErrShuttingDown is returned by Play once Shutdown has started.
var ErrShuttingDown = errors.New("loop: host is shutting down")

// Session describes one connected terminal.
type Session struct {
	User   string
	Reader io.Reader
	Writer io.Writer
	// Size reports the terminal size. Nil reads os.Stdout.
	Size draw.TermSizeFunc
	// Audio plays cues locally. Nil is silent.
	Audio game.Audio
	// Seed fixes the asteroid field. Zero seeds from the clock.
	Seed int64
	// World overrides the physics engine, mainly for tests.
	World physics.World
}

// Host runs an independent game for every session and publishes each one
// to the spectator hub, when there is one.
type Host struct {
	cfg game.Config
	hub *spectate.Hub
	log *log.Logger

	frameTime time.Duration

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
	closing  bool
	wg       sync.WaitGroup
}

// NewHost creates a host. hub and logger may be nil.
func NewHost(cfg game.Config, hub *spectate.Hub, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Host{
		cfg:      cfg,
		hub:      hub,
		log:      logger,
		sessions: make(map[string]context.CancelFunc),
	}
}

// Play runs a game for s until the player quits, the connection fails, ctx
// is cancelled or the host shuts down. It blocks for the whole session.
func (h *Host) Play(ctx context.Context, s Session) error {
	id := uuid.NewV4().String()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.mu.Lock()
	if h.closing {
		h.mu.Unlock()
		return ErrShuttingDown
	}
	h.sessions[id] = cancel
	h.wg.Add(1)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.sessions, id)
		h.mu.Unlock()
		h.wg.Done()
	}()

	term := render.NewTerminal(s.Writer, s.Size, h.cfg.ViewHalfWidth, h.cfg.ViewHalfHeight)
	defer term.Close()
	renderers := game.MultiRenderer{term}
	if h.hub != nil {
		feed := h.hub.Open(id, s.User)
		defer feed.Close()
		renderers = append(renderers, feed)
	}

	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := h.log.With("user", s.User)
	g, err := game.New(h.cfg, game.Options{
		World:     s.World,
		Rand:      rand.New(rand.NewSource(seed)),
		SessionID: id,
		Renderer:  renderers,
		Audio:     s.Audio,
		Logger:    logger,
	})
	if err != nil {
		return errors.Wrap(err, "start game")
	}

	stream := input.StartStream(bufio.NewReader(s.Reader))
	err = Run(ctx, g, stream, Options{FrameTime: h.frameTime, RenderErr: term.Err})
	logger.Info("session ended", "session", id, "score", g.Score(), "err", err)
	return err
}

// Active returns the number of running sessions.
func (h *Host) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown stops accepting sessions, ends the running ones and waits up to
// timeout for them to return. It reports whether every session finished.
func (h *Host) Shutdown(timeout time.Duration) bool {
	h.mu.Lock()
	h.closing = true
	for _, cancel := range h.sessions {
		cancel()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
