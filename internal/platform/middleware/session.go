package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

// SessionValidator validates a session token and returns the user ID it
// carries.
type SessionValidator interface {
	Validate(token string) (string, error)
}

type contextKeySessionUID struct{}

// ContextKeySessionUID is exported for use in handlers and tests.
var ContextKeySessionUID = contextKeySessionUID{}

// GetSessionUID retrieves the restored session user ID from the context.
// Empty means the request carried no usable session cookie.
func GetSessionUID(ctx context.Context) string {
	uid, ok := ctx.Value(ContextKeySessionUID).(string)
	if !ok {
		return ""
	}
	return uid
}

// Session restores the session cookie on every request: a valid cookie puts
// its user ID into the context, an invalid or expired one is logged and
// treated as absent. Rejection is left to the handlers, which know whether
// the current navigation state requires a session at all.
func Session(cookieName string, validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid, err := validator.Validate(cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "session cookie rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionUID, uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
