// Package httpapi wires the REST endpoints and the websocket upgrade
// into one router.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"personal-chat/auth"
	"personal-chat/infrastructure/ws"
	"personal-chat/services"
	"personal-chat/storage"
)

func NewRouter(log *slog.Logger, tokens *auth.TokenIssuer,
	authService services.IAuthService, chatService services.IChatService,
	files *storage.DiskStore, wsHandler *ws.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chimw.Recoverer)

	h := NewHandler(log, authService, chatService, files)

	r.Get("/healthz", h.Health)
	r.Handle("/ws", wsHandler)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(files.Dir()))))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(tokens))
			r.Get("/users", h.ListUsers)
			r.Get("/conversation", h.FetchConversation)
			r.Post("/upload", h.Upload)
		})
	})

	return r
}
