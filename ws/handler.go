package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/sink"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler upgrades HTTP requests to websocket sessions and bridges them
// to the coordinator: inbound frames become commands, the connection's
// sink is drained back out by a write pump.
type Handler struct {
	log         *slog.Logger
	coordinator contract.ICoordinator
	bufferSize  int
	upgrader    websocket.Upgrader
}

func NewHandler(log *slog.Logger, coordinator contract.ICoordinator,
	connectionBufferSize int, allowedOrigin string) *Handler {
	return &Handler{
		log:         log,
		coordinator: coordinator,
		bufferSize:  connectionBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowedOrigin == "*" || r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	snk := sink.NewConnSink(h.bufferSize)
	h.coordinator.Connect(connID, snk)
	h.log.Info("Connection opened", "conn", connID, "remote", conn.RemoteAddr().String())

	done := make(chan struct{})
	go h.writePump(conn, snk, done)

	h.readLoop(conn, connID)

	// The read loop is the single exit point of a session, so the
	// disconnect is dispatched exactly once, whether the peer left
	// cleanly or the transport broke mid-frame.
	h.coordinator.Dispatch(domain.DisconnectCommand{Conn: connID})
	close(done)
	h.log.Info("Connection closed", "conn", connID)
}

// readLoop decodes inbound frames and dispatches them until the
// connection dies. Invalid frames are dropped with a log entry; the room
// never sees them.
func (h *Handler) readLoop(conn *websocket.Conn, connID string) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Read error", "conn", connID, "error", err)
			}
			return
		}

		cmd, err := frame.Command(connID)
		if err != nil {
			h.log.Debug("Rejecting invalid frame", "conn", connID, "error", err)
			continue
		}
		h.coordinator.Dispatch(cmd)
	}
}

// writePump serializes the connection's sink out to the peer, with write
// deadlines and periodic pings. It owns all writes on the socket.
func (h *Handler) writePump(conn *websocket.Conn, snk *sink.ConnSink, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case evt := <-snk.Events():
			payload, ok := toPayload(evt)
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
