package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/canyon-webchat/pkg/utils"
)

// Recover turns a panic into a 500 carrying reply, so chat clients still
// have something to render.
func Recover(logger zerolog.Logger, reply string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				utils.RespondReply(w, http.StatusInternalServerError, reply)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
