package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"personal-chat/auth"
	"personal-chat/errors"
	"personal-chat/services"
	"personal-chat/storage"
)

// Handler serves the REST side of the system: account management, the
// synchronous conversation query, and file uploads. Real-time delivery
// stays on the websocket transport.
type Handler struct {
	log   *slog.Logger
	auth  services.IAuthService
	chat  services.IChatService
	files *storage.DiskStore
}

func NewHandler(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, files *storage.DiskStore) *Handler {
	return &Handler{log: log, auth: authService, chat: chatService, files: files}
}

const maxUploadBytes = 32 << 20 // 32 MB

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Register(req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusCreated, map[string]any{"token": token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]any{"token": token})
}

func (h *Handler) ListUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := h.auth.Users()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, users)
}

// FetchConversation is the synchronous query path. Participant order
// in the query string does not matter; both orders resolve to the same
// conversation.
func (h *Handler) FetchConversation(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		http.Error(w, "both participants are required", http.StatusBadRequest)
		return
	}

	if claims, ok := ClaimsFrom(r.Context()); ok && claims.Email != a && claims.Email != b {
		h.log.Warn("conversation queried by a non-participant",
			"requester", claims.Email, "a", a, "b", b)
	}

	conversation, err := h.chat.FetchConversation(a, b)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, http.StatusOK, conversation)
}

// Upload stores a multipart file and returns the descriptor the client
// should attach to its next send_message frame.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	descriptor, err := h.files.Save(header.Filename, file)
	if err != nil {
		h.log.Error("upload failed", "error", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}
	h.respond(w, http.StatusCreated, descriptor)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encoding failed", "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}
