package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"whiteboard/internal/api"
	"whiteboard/internal/auth"
	"whiteboard/internal/config"
	"whiteboard/internal/metrics"
	"whiteboard/internal/presence"
	"whiteboard/internal/session"
)

func New(log *zap.Logger, cfg config.Config, hub *session.Hub, pub *presence.Publisher) http.Handler {
	h := api.NewHandlers(log, auth.NewVerifier(cfg.SSOSecret), hub, pub)
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(metrics.Middleware("whiteboard"))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/auth/sso", h.SSO)
	r.Get("/ws", h.RoomWS)

	// Whiteboard client bundle.
	r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))

	return r
}
