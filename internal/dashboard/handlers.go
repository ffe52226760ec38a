package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

type handlers struct {
	feed *Feed
	hub  *Hub
	log  *slog.Logger
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *handlers) snapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.feed.Snapshot()); err != nil {
		h.log.Error("dashboard: failed to encode snapshot", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Read-only local monitoring surface; the dashboard's Non-goal is real
	// networking, so any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("dashboard: websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn)

	data, err := json.Marshal(Event{Type: "snapshot", Data: h.feed.Snapshot()})
	if err != nil {
		h.log.Error("dashboard: failed to marshal initial snapshot", "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
		h.log.Warn("dashboard: failed to send initial snapshot to client")
	}
}
