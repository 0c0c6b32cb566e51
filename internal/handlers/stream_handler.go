package handlers

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"multimodalchat/internal/models"
	"multimodalchat/internal/store"

	"github.com/gorilla/websocket"
)

const (
	streamBuffer   = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
)

// StreamHandler pushes the conversation log to websocket clients: one
// snapshot frame on connect, then one frame per appended message.
type StreamHandler struct {
	store    store.MessageStore
	upgrader websocket.Upgrader
	logger   *slog.Logger

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// NewStreamHandler creates a StreamHandler. An empty allowedOrigins list, or
// one containing "*", accepts any origin.
func NewStreamHandler(st store.MessageStore, allowedOrigins []string, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &StreamHandler{
		store:    st,
		logger:   logger.With("component", "StreamHandler"),
		shutdown: make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Shutdown closes every open stream with a going-away frame. It is safe to
// register with http.Server.RegisterOnShutdown, since hijacked connections
// are not closed by the server.
func (h *StreamHandler) Shutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
}

// HandleStream handles GET /v1/messages/stream
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan models.Message, streamBuffer)
	slow := make(chan struct{})
	var slowOnce sync.Once

	// Subscribe before the snapshot so nothing appended in between is missed.
	unsubscribe := h.store.Subscribe(func(msg models.Message) {
		select {
		case events <- msg:
		default:
			slowOnce.Do(func() { close(slow) })
		}
	})
	defer unsubscribe()

	snapshot := h.store.ReadAll()
	var lastID int64
	if n := len(snapshot); n > 0 {
		lastID = snapshot[n-1].ID
	}
	if err := h.write(conn, models.StreamEvent{Kind: models.StreamEventSnapshot, Messages: snapshot}); err != nil {
		h.logger.Warn("failed to write snapshot", "error", err)
		return
	}
	h.logger.Info("stream opened", "remote_addr", r.RemoteAddr, "snapshot_len", len(snapshot))

	readDone := make(chan struct{})
	go h.readPump(conn, readDone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-events:
			if msg.ID <= lastID {
				continue
			}
			lastID = msg.ID
			if err := h.write(conn, models.StreamEvent{Kind: models.StreamEventAppended, Message: &msg}); err != nil {
				h.logger.Warn("failed to write message", "error", err, "message_id", msg.ID)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-slow:
			h.logger.Warn("closing slow stream client", "remote_addr", r.RemoteAddr)
			h.close(conn, websocket.CloseTryAgainLater, "client too slow")
			return
		case <-h.shutdown:
			h.close(conn, websocket.CloseGoingAway, "server shutting down")
			return
		case <-readDone:
			h.logger.Info("stream closed by client", "remote_addr", r.RemoteAddr)
			return
		}
	}
}

// readPump discards inbound frames and keeps the pong deadline fresh.
func (h *StreamHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxInboundSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, ev models.StreamEvent) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}

func (h *StreamHandler) close(conn *websocket.Conn, code int, reason string) {
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}
