package stream

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gravity-cluster/pkg/driver"
)

type fakeController struct {
	mu      sync.Mutex
	running bool
	resets  int
	speed   int
}

func (f *fakeController) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	return nil
}

func (f *fakeController) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
}

func (f *fakeController) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeController) SetSpeed(level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speed = level
	return nil
}

func (f *fakeController) Snapshot() (driver.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return driver.Snapshot{Configuration: "Fake", Step: 7, Running: f.running, Finite: true}, nil
}

func (f *fakeController) state() (bool, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running, f.resets, f.speed
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastReachesClients(t *testing.T) {
	h := NewHub(&fakeController{}, 1000, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	waitFor(t, func() bool { return h.Clients() == 2 })

	if !h.Broadcast(driver.Snapshot{Configuration: "Binary", Step: 42, Finite: true}) {
		t.Fatal("expected broadcast to be sent")
	}
	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var s driver.Snapshot
		if err := conn.ReadJSON(&s); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if s.Configuration != "Binary" || s.Step != 42 {
			t.Errorf("unexpected snapshot %+v", s)
		}
	}
}

func TestBroadcastRateLimited(t *testing.T) {
	h := NewHub(nil, 1, nil)
	if !h.Broadcast(driver.Snapshot{}) {
		t.Fatal("expected first frame to pass")
	}
	if h.Broadcast(driver.Snapshot{}) {
		t.Error("expected second immediate frame to be dropped")
	}
}

func TestBroadcastDropsNonFinite(t *testing.T) {
	h := NewHub(nil, 1000, nil)
	s := driver.Snapshot{Bodies: []driver.BodyState{{X: math.NaN()}}}
	if h.Broadcast(s) {
		t.Error("expected NaN snapshot to be dropped")
	}
}

func TestCommands(t *testing.T) {
	ctrl := &fakeController{}
	h := NewHub(ctrl, 1000, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	for _, cmd := range []Command{{Action: "start"}, {Action: "reset"}, {Action: "speed", Level: 3}, {Action: "bogus"}} {
		if err := conn.WriteJSON(cmd); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool {
		running, resets, speed := ctrl.state()
		return running && resets == 1 && speed == 3
	})

	if err := conn.WriteJSON(Command{Action: "pause"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		running, _, _ := ctrl.state()
		return !running
	})
}

func TestDisconnectRemovesClient(t *testing.T) {
	h := NewHub(nil, 1000, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return h.Clients() == 1 })
	conn.Close()
	waitFor(t, func() bool { return h.Clients() == 0 })
}

func TestRunPumpsUpdates(t *testing.T) {
	h := NewHub(nil, 1000, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, func() bool { return h.Clients() == 1 })

	updates := make(chan driver.Snapshot, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx, updates)
		close(done)
	}()

	updates <- driver.Snapshot{Step: 9}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var s driver.Snapshot
	if err := conn.ReadJSON(&s); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if s.Step != 9 {
		t.Errorf("expected step 9, got %d", s.Step)
	}

	cancel()
	<-done
	if h.Clients() != 0 {
		t.Errorf("expected clients closed after Run, got %d", h.Clients())
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	h := NewHub(&fakeController{}, 30, nil)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var s driver.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Configuration != "Fake" || s.Step != 7 {
		t.Errorf("unexpected snapshot %+v", s)
	}
}

func TestSnapshotEndpointWithoutController(t *testing.T) {
	h := NewHub(nil, 30, nil)
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
