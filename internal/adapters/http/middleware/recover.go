package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Sticlo/ProyectoCobra/internal/adapters/http/respond"
	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

// Recover turns a handler panic into a 500 error envelope.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				log.Error(r.Context(), "panic recovered",
					logger.String("request_id", GetRequestID(r.Context())),
					logger.String("panic", fmt.Sprint(rvr)),
					logger.String("stack", string(debug.Stack())),
				)

				respond.WriteError(w, http.StatusInternalServerError, respond.MsgErrorInterno, nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
