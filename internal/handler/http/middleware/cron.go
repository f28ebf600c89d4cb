package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/handler/http/response"
)

const cronSecretHeader = "X-Cron-Secret"

// CronSecret guards the internal job-trigger endpoints called by the
// external cron runner. These requests carry a shared secret instead of a
// user token.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				response.Unauthorized(w, "Cron trigger endpoint is not configured")
				return
			}

			provided := r.Header.Get(cronSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				response.Unauthorized(w, "Invalid cron secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
