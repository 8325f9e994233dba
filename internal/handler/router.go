package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/canyon-webchat/internal/handler/webchat"
	"github.com/zhouzirui/canyon-webchat/internal/middleware"
	"github.com/zhouzirui/canyon-webchat/internal/model/venue"
	"github.com/zhouzirui/canyon-webchat/internal/service/session"
	"github.com/zhouzirui/canyon-webchat/pkg/utils"
)

// NewRouter wires the stub chat endpoints.
func NewRouter(logger zerolog.Logger, sessions *session.Service, venues venue.Store, opts ...webchat.Option) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recover(logger, webchat.InternalReply))
	r.Use(middleware.CORS)

	opts = append([]webchat.Option{webchat.WithLogger(logger)}, opts...)
	webchat.New(sessions, venues, opts...).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
