package spectate

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Router serves the landing page, the session list and the per-session
// WebSocket feeds. sshHost is shown in the connect instructions.
func (h *Hub) Router(sshHost string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.handleIndex(sshHost)).Methods(http.MethodGet)
	r.HandleFunc("/sessions", h.handleSessions).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id:[a-zA-Z0-9\\-]+}/ws", h.handleWebsocket).Methods(http.MethodGet)
	return r
}

func (h *Hub) handleIndex(sshHost string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := struct {
			SSHHost  string
			Sessions []SessionInfo
		}{sshHost, h.Sessions()}
		if err := indexTmpl.Execute(w, data); err != nil {
			h.log.Warn("render index", "err", err)
		}
	}
}

func (h *Hub) handleSessions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Sessions()); err != nil {
		h.log.Warn("encode sessions", "err", err)
	}
}

func (h *Hub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	feed, ok := h.Feed(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade", "session", id, "err", err)
		return
	}

	v, ok := feed.subscribe()
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"))
		_ = conn.Close()
		return
	}
	h.log.Debug("viewer joined", "session", id, "remote", r.RemoteAddr)

	go h.readPump(feed, v, conn)
	h.writePump(v, conn)
}

// readPump discards viewer messages; it exists to notice disconnects and
// answer pings.
func (h *Hub) readPump(feed *Feed, v *viewer, conn *websocket.Conn) {
	defer feed.unsubscribe(v)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("viewer read", "session", feed.id, "err", err)
			}
			return
		}
	}
}

// writePump forwards frames until the feed closes the viewer.
func (h *Hub) writePump(v *viewer, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug("viewer write", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
