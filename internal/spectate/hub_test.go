package spectate

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/asteroidfield/internal/game"
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) now() time.Time { return f.t }

func newTestHub() (*Hub, *fakeNow) {
	clock := &fakeNow{t: time.Unix(1000, 0)}
	h := NewHub(nil)
	h.now = clock.now
	return h, clock
}

func TestOpenIsIdempotent(t *testing.T) {
	h, _ := newTestHub()
	a := h.Open("s1", "alice")
	b := h.Open("s1", "bob")
	assert.Same(t, a, b)

	got, ok := h.Feed("s1")
	assert.True(t, ok)
	assert.Same(t, a, got)
}

func TestSessionsOldestFirst(t *testing.T) {
	h, clock := newTestHub()
	h.Open("b", "second")
	clock.t = clock.t.Add(time.Second)
	h.Open("a", "third")
	clock.t = clock.t.Add(-2 * time.Second)
	h.Open("c", "first")

	var users []string
	for _, s := range h.Sessions() {
		users = append(users, s.User)
	}
	assert.Equal(t, []string{"first", "second", "third"}, users)
}

func TestRenderIsThrottled(t *testing.T) {
	h, clock := newTestHub()
	f := h.Open("s1", "alice")
	v, ok := f.subscribe()
	require.True(t, ok)

	f.Render(game.Frame{State: game.Playing, Tick: 1})
	f.Render(game.Frame{State: game.Playing, Tick: 2})
	assert.Len(t, v.send, 1)

	// A HUD change goes out immediately.
	f.Render(game.Frame{State: game.Playing, Tick: 3, Score: 1})
	assert.Len(t, v.send, 2)

	clock.t = clock.t.Add(h.interval)
	f.Render(game.Frame{State: game.Playing, Tick: 4, Score: 1})
	assert.Len(t, v.send, 3)
}

func TestSlowViewerDropsFrames(t *testing.T) {
	h, clock := newTestHub()
	f := h.Open("s1", "alice")
	v, ok := f.subscribe()
	require.True(t, ok)

	for i := 0; i < cap(v.send)+3; i++ {
		clock.t = clock.t.Add(time.Second)
		f.Render(game.Frame{Tick: uint64(i)})
	}
	assert.Len(t, v.send, cap(v.send))
	assert.Equal(t, uint64(3), f.Dropped())
}

func TestSubscribeGetsLatestFrame(t *testing.T) {
	h, _ := newTestHub()
	f := h.Open("s1", "alice")
	f.Render(game.Frame{Score: 9})

	v, ok := f.subscribe()
	require.True(t, ok)
	var got game.Frame
	require.NoError(t, json.Unmarshal(<-v.send, &got))
	assert.Equal(t, 9, got.Score)
}

func TestCloseDisconnectsViewers(t *testing.T) {
	h, _ := newTestHub()
	f := h.Open("s1", "alice")
	v, _ := f.subscribe()

	f.Close()
	f.Close()
	_, open := <-v.send
	assert.False(t, open)
	_, ok := h.Feed("s1")
	assert.False(t, ok)

	_, ok = f.subscribe()
	assert.False(t, ok)
	f.Render(game.Frame{})
}

func TestSessionsEndpoint(t *testing.T) {
	h, _ := newTestHub()
	f := h.Open("s1", "alice")
	f.Render(game.Frame{State: game.Playing, Score: 4})

	srv := httptest.NewServer(h.Router("example.org"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessions []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "alice", sessions[0]["user"])
	assert.Equal(t, "playing", sessions[0]["state"])
	assert.EqualValues(t, 4, sessions[0]["score"])
}

func TestIndexShowsConnectInstructions(t *testing.T) {
	h, _ := newTestHub()
	h.Open("s1", "alice")
	srv := httptest.NewServer(h.Router("example.org"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ssh -t example.org")
	assert.Contains(t, string(body), "alice")
}

func TestUnknownSessionIs404(t *testing.T) {
	h, _ := newTestHub()
	srv := httptest.NewServer(h.Router("example.org"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sessions/nope/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketStreamsFrames(t *testing.T) {
	h, clock := newTestHub()
	f := h.Open("s1", "alice")
	srv := httptest.NewServer(h.Router("example.org"))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/s1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.Viewers() == 1 }, time.Second, 5*time.Millisecond)

	clock.t = clock.t.Add(time.Second)
	f.Render(game.Frame{Session: "s1", State: game.Playing, Score: 12, Health: 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got map[string]any
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "s1", got["session"])
	assert.EqualValues(t, 12, got["score"])

	// Closing the feed ends the stream.
	f.Close()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
