package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/cache"
	"github.com/tautlabs/taut/internal/repository"
)

// AuthConfig holds configuration for the session auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Signer     *auth.SessionSigner
	Repository *repository.Repository
	Cache      *cache.Cache
}

// Auth returns a middleware that authenticates requests via the session
// cookie. The cookie holds a signed JWT whose subject is the user's
// email; the resolved user is injected into the request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeAuthError(w)
				return
			}

			email, err := cfg.Signer.Verify(cookie.Value)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrTokenExpired) {
					reason = "token_expired"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(cookie.Value)
			user, _ := cfg.Cache.GetSessionUser(r.Context(), cacheKey)
			cacheHit := user != nil

			if user == nil {
				user, err = cfg.Repository.GetUserByEmail(r.Context(), email)
				if err != nil {
					if errors.Is(err, repository.ErrUserNotFound) {
						cfg.Logger.Warn("authentication failed",
							slog.String("reason", "unknown_user"),
							slog.String("ip", r.RemoteAddr),
							slog.String("endpoint", r.Method+" "+r.URL.Path),
							slog.String("request_id", GetRequestID(r.Context())),
						)
					} else {
						cfg.Logger.Error("database error during auth",
							slog.String("error", err.Error()),
							slog.String("request_id", GetRequestID(r.Context())),
						)
					}
					writeAuthError(w)
					return
				}
				_ = cfg.Cache.SetSessionUser(r.Context(), cacheKey, user)
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", user.ID),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Authentication required"}}`))
}
