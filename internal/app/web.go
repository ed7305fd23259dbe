package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gps_compass/internal/config"
	"github.com/relabs-tech/gps_compass/internal/telemetry"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from the same device
	},
}

// frameHub keeps the latest telemetry frame and fans new ones out to the
// connected websocket clients.
type frameHub struct {
	mu      sync.RWMutex
	last    telemetry.Frame
	have    bool
	clients map[chan telemetry.Frame]struct{}
}

func newFrameHub() *frameHub {
	return &frameHub{clients: make(map[chan telemetry.Frame]struct{})}
}

func (h *frameHub) update(f telemetry.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = f
	h.have = true
	for ch := range h.clients {
		select {
		case ch <- f:
		default: // slow client, it catches up on the next frame
		}
	}
}

func (h *frameHub) latest() (telemetry.Frame, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.have
}

func (h *frameHub) subscribe() (<-chan telemetry.Frame, func()) {
	ch := make(chan telemetry.Frame, 4)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

// handleTelemetry serves the latest frame as JSON.
func (h *frameHub) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	f, ok := h.latest()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleWS streams every frame to one websocket client, starting with the
// latest one.
func (h *frameHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	frames, cancel := h.subscribe()
	defer cancel()

	// the client never sends anything; reading only notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: websocket error: %v", err)
				}
				return
			}
		}
	}()

	write := func(f telemetry.Frame) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(f) == nil
	}
	if f, ok := h.latest(); ok && !write(f) {
		return
	}
	for {
		select {
		case f := <-frames:
			if !write(f) {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *frameHub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/telemetry", h.handleTelemetry)
	mux.HandleFunc("/ws", h.handleWS)
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb subscribes to the device telemetry and serves the dashboard.
func RunWeb() error {
	cfg := config.Get()
	hub := newFrameHub()

	client, err := connectSubscriber(cfg.MQTTBroker, cfg.MQTTClientIDWeb, "web")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeTelemetry(client, cfg.TopicTelemetry, "web", hub.update); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, hub.routes())
}
