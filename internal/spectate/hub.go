// Package spectate publishes live game sessions to browsers. Each session
// gets a Feed, which is a game.Renderer that encodes throttled JSON frames and
// fans them out to any number of WebSocket viewers without ever blocking the
// game loop.
package spectate

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/asteroidfield/internal/game"
	"github.com/tomz197/asteroidfield/internal/loop/config"
)

// SessionInfo describes a live session in the /sessions listing.
type SessionInfo struct {
	ID      string     `json:"id"`
	User    string     `json:"user"`
	Started time.Time  `json:"started"`
	State   game.State `json:"state"`
	Score   int        `json:"score"`
	Viewers int        `json:"viewers"`
}

// Hub tracks the open feeds.
type Hub struct {
	mu       sync.RWMutex
	feeds    map[string]*Feed
	log      *log.Logger
	interval time.Duration
	now      func() time.Time
}

// NewHub creates an empty hub. A nil logger discards output.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		feeds:    make(map[string]*Feed),
		log:      logger,
		interval: config.SpectateFrameTime,
		now:      time.Now,
	}
}

// Open registers a feed for a session. Opening an id that is already open
// returns the existing feed.
func (h *Hub) Open(id, user string) *Feed {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.feeds[id]; ok {
		return f
	}
	f := &Feed{
		hub:      h,
		id:       id,
		user:     user,
		started:  h.now(),
		interval: h.interval,
		viewers:  make(map[*viewer]struct{}),
	}
	h.feeds[id] = f
	h.log.Info("feed opened", "session", id, "user", user)
	return f
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.feeds, id)
	h.mu.Unlock()
	h.log.Info("feed closed", "session", id)
}

// Feed returns the open feed for a session.
func (h *Hub) Feed(id string) (*Feed, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	f, ok := h.feeds[id]
	return f, ok
}

// Sessions lists the open feeds, oldest first.
func (h *Hub) Sessions() []SessionInfo {
	h.mu.RLock()
	feeds := make([]*Feed, 0, len(h.feeds))
	for _, f := range h.feeds {
		feeds = append(feeds, f)
	}
	h.mu.RUnlock()

	out := make([]SessionInfo, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, f.info())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Started.Equal(out[j].Started) {
			return out[i].ID < out[j].ID
		}
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

// viewer is one WebSocket subscriber. send is closed by the feed.
type viewer struct {
	send chan []byte
}

// Feed is the per-session publisher.
type Feed struct {
	hub      *Hub
	id       string
	user     string
	started  time.Time
	interval time.Duration

	mu      sync.Mutex
	last    time.Time
	lastKey frameKey
	latest  []byte
	state   game.State
	score   int
	viewers map[*viewer]struct{}
	dropped uint64
	closed  bool
}

var _ game.Renderer = (*Feed)(nil)

// frameKey holds the fields whose change is published immediately,
// regardless of the throttle.
type frameKey struct {
	state        game.State
	paused       bool
	allowRestart bool
	score        int
	health       int
}

// Render publishes f if the throttle interval has passed or something in
// the HUD changed. It never blocks: viewers that fall behind lose frames.
func (f *Feed) Render(fr game.Frame) {
	now := f.hub.now()
	key := frameKey{
		state:        fr.State,
		paused:       fr.Paused,
		allowRestart: fr.AllowRestart,
		score:        fr.Score,
		health:       fr.Health,
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if !f.last.IsZero() && now.Sub(f.last) < f.interval && key == f.lastKey {
		return
	}

	data, err := json.Marshal(fr)
	if err != nil {
		f.hub.log.Error("encode frame", "session", f.id, "err", err)
		return
	}
	f.last, f.lastKey, f.latest = now, key, data
	f.state, f.score = fr.State, fr.Score

	for v := range f.viewers {
		select {
		case v.send <- data:
		default:
			f.dropped++
		}
	}
}

// subscribe adds a viewer and primes it with the latest frame.
func (f *Feed) subscribe() (*viewer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, false
	}
	v := &viewer{send: make(chan []byte, config.SpectateBuffer)}
	if f.latest != nil {
		v.send <- f.latest
	}
	f.viewers[v] = struct{}{}
	return v, true
}

func (f *Feed) unsubscribe(v *viewer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.viewers[v]; ok {
		delete(f.viewers, v)
		close(v.send)
	}
}

// Viewers returns the number of connected viewers.
func (f *Feed) Viewers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.viewers)
}

// Dropped returns how many frames were skipped for slow viewers.
func (f *Feed) Dropped() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

func (f *Feed) info() SessionInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SessionInfo{
		ID:      f.id,
		User:    f.user,
		Started: f.started,
		State:   f.state,
		Score:   f.score,
		Viewers: len(f.viewers),
	}
}

// Close disconnects every viewer and removes the feed from the hub.
// It is safe to call more than once.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	for v := range f.viewers {
		close(v.send)
	}
	f.viewers = map[*viewer]struct{}{}
	f.mu.Unlock()

	f.hub.remove(f.id)
}
