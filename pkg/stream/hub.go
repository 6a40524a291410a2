// Package stream broadcasts driver snapshots to websocket clients and
// accepts playback commands from them.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gravity-cluster/pkg/driver"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 4
)

// Controller is the subset of the driver a remote client may operate.
type Controller interface {
	Start() error
	Pause()
	Reset() error
	SetSpeed(level int) error
	Snapshot() (driver.Snapshot, error)
}

// Command is a client message.
type Command struct {
	Action string `json:"action"`
	Level  int    `json:"level,omitempty"`
}

var errUnknownAction = errors.New("unknown action")

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected client.
type Hub struct {
	ctrl     Controller
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub returns a hub sending at most frameRate frames per second.
func NewHub(ctrl Controller, frameRate float64, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		ctrl:    ctrl,
		limiter: rate.NewLimiter(rate.Limit(frameRate), 1),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Handler routes /ws to the websocket endpoint and /snapshot to the
// latest state as JSON.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/snapshot", h.handleSnapshot)
	return mux
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	go h.writePump(c)
	go h.readPump(c)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes s once and queues it for every client. It reports
// false when the frame was dropped by the rate limit or could not be
// encoded.
func (h *Hub) Broadcast(s driver.Snapshot) bool {
	if !h.limiter.Allow() {
		return false
	}
	data, err := json.Marshal(s)
	if err != nil {
		// NaN coordinates have no JSON form
		h.log.Warn("dropping snapshot", "step", s.Step, "error", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Debug("client behind, frame skipped", "remote", c.conn.RemoteAddr())
		}
	}
	return true
}

// Run broadcasts every snapshot from updates until ctx is done or the
// channel closes, then disconnects all clients.
func (h *Hub) Run(ctx context.Context, updates <-chan driver.Snapshot) {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			h.Broadcast(s)
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.Debug("write failed, dropping client", "remote", c.conn.RemoteAddr(), "error", err)
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("client read failed", "remote", c.conn.RemoteAddr(), "error", err)
			}
			return
		}
		if err := h.apply(cmd); err != nil {
			h.log.Warn("command rejected", "action", cmd.Action, "error", err)
		}
	}
}

func (h *Hub) apply(cmd Command) error {
	if h.ctrl == nil {
		return errUnknownAction
	}
	switch cmd.Action {
	case "start":
		return h.ctrl.Start()
	case "pause":
		h.ctrl.Pause()
		return nil
	case "reset":
		return h.ctrl.Reset()
	case "speed":
		return h.ctrl.SetSpeed(cmd.Level)
	default:
		return errUnknownAction
	}
}

func (h *Hub) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.ctrl == nil {
		http.Error(w, "no simulation", http.StatusServiceUnavailable)
		return
	}
	s, err := h.ctrl.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
