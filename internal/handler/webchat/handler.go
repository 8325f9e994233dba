// Package webchat serves the stub /webchat and /reset_session endpoints used
// for local development of the chat panel.
package webchat

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/canyon-webchat/internal/analysis/intent"
	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
	"github.com/zhouzirui/canyon-webchat/internal/model/venue"
	"github.com/zhouzirui/canyon-webchat/internal/service/session"
	"github.com/zhouzirui/canyon-webchat/pkg/utils"
)

// CookieName carries the session id between requests.
const CookieName = "canyon_session"

const maxRequestBytes = 64 << 10

// Handler serves the chat endpoints.
type Handler struct {
	sessions *session.Service
	replies  *Replier
	logger   zerolog.Logger
}

// Option customises a Handler.
type Option func(*Handler)

// WithPicker makes reply selection deterministic.
func WithPicker(pick Picker) Option {
	return func(h *Handler) {
		h.replies.pick = pick
	}
}

// WithLogger overrides the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New creates the chat handler.
func New(sessions *session.Service, venues venue.Store, opts ...Option) *Handler {
	h := &Handler{
		sessions: sessions,
		replies:  NewReplier(venues, nil),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With().Str("component", "webchat").Logger()
	return h
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webchat", h.handleWebchat)
	r.Post("/reset_session", h.handleResetSession)
}

func (h *Handler) handleWebchat(w http.ResponseWriter, r *http.Request) {
	var payload chat.WebchatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	sess, created := h.sessions.Acquire(ctx, sessionCookie(r))
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	text := strings.TrimSpace(payload.Body)
	logger := h.logger.With().Str("session", sess.ID).Logger()

	if sess.UserName == "" {
		res := intent.ExtractName(text, sess.AskedName)
		switch {
		case res.Found() && res.Valid:
			if err := h.sessions.RememberName(ctx, sess.ID, res.Name); err != nil {
				logger.Warn().Err(err).Msg("failed to remember name")
			}
			utils.RespondReply(w, http.StatusOK, NiceToMeet(res.Name))
		case res.Found():
			utils.RespondReply(w, http.StatusOK, BadNameReply)
		default:
			if err := h.sessions.MarkAskedName(ctx, sess.ID); err != nil {
				logger.Warn().Err(err).Msg("failed to mark name question")
			}
			utils.RespondReply(w, http.StatusOK, AskNameReply)
		}
		return
	}

	reply := h.replies.Answer(text, sess.UserName, payload.Visited)
	logger.Debug().Str("reply", reply).Msg("answered")
	utils.RespondReply(w, http.StatusOK, reply)
}

func (h *Handler) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if id := sessionCookie(r); id != "" {
		h.sessions.Clear(r.Context(), id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	utils.RespondJSON(w, http.StatusOK, chat.ResetReply{Success: true})
}

func sessionCookie(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
