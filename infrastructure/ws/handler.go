package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"personal-chat/services"
)

// Handler upgrades HTTP requests into websocket chat sessions.
type Handler struct {
	log        *slog.Logger
	service    services.IChatService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, service services.IChatService, bufferSize int) *Handler {
	return &Handler{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin filtering belongs to the fronting proxy; browser
			// clients connect from anywhere.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(h.log, conn, h.service, h.bufferSize)
	defer func() { _ = conn.Close() }()
	client.Run(r.Context())
}
