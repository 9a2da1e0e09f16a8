package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nadzzz/finecho/internal/message"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum command frame size.
	maxFrameSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	// Origins are not checked; requireAuth gates access.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsError is sent when a frame cannot be processed. The session stays open.
type wsError struct {
	Error string `json:"error"`
}

// voiceSession handles GET /ws. Each text frame carries a CommandRequest
// and is answered with exactly one CommandResponse or wsError frame.
//
// @Summary      Voice command session
// @Description  Upgrades to a WebSocket. Send {"userId":1,"command":"..."} text frames; each is answered with one CommandResponse frame.
// @Tags         voice
// @Param        token  query  string  false  "Bearer token, when auth is enabled"
// @Success      101
// @Router       /ws [get]
func (h *handlers) voiceSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		slog.Warn("websocket upgrade failed", "request_id", requestIDFrom(r.Context()), "error", err)
		return
	}
	defer conn.Close()

	logger := slog.With("request_id", requestIDFrom(r.Context()), "remote", r.RemoteAddr)
	logger.Info("voice session opened")

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("voice session read failed", "error", err)
			}
			break
		}

		var reply any
		if mt != websocket.TextMessage {
			reply = wsError{Error: "only text frames are supported"}
		} else {
			reply = h.sessionReply(r, data)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("voice session write failed", "error", err)
			break
		}
	}
	logger.Info("voice session closed")
}

func (h *handlers) sessionReply(r *http.Request, data []byte) any {
	var req message.CommandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return wsError{Error: "invalid json: " + err.Error()}
	}
	if caller, ok := callerFrom(r.Context()); ok && req.UserID == 0 {
		req.UserID = caller
	}
	if !allowed(r, req.UserID) {
		return wsError{Error: "forbidden"}
	}

	resp, err := h.svc.ProcessCommand(r.Context(), req)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("voice session command failed", "request_id", requestIDFrom(r.Context()), "error", err)
		}
		return wsError{Error: msg}
	}
	return resp
}

// keepAlive pings the peer until done is closed. WriteControl may run
// concurrently with the session's writes.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
