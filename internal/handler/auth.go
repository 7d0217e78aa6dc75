package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/handler/dto"
	"github.com/tautlabs/taut/internal/model"
)

const (
	stateCookieName = "taut_oauth_state"
	stateCookieTTL  = 20 * time.Minute

	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// UserUpserter persists identity-provider users.
type UserUpserter interface {
	UpsertUser(ctx context.Context, user *model.User) (*model.User, error)
}

// SessionCache invalidates cached session lookups on logout.
type SessionCache interface {
	DeleteSessionUser(ctx context.Context, cacheKey string) error
}

// AuthHandlerConfig holds the dependencies for AuthHandler.
type AuthHandlerConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AllowedEmails      []string
	SecureCookies      bool

	Signer *auth.SessionSigner
	Users  UserUpserter
	Cache  SessionCache
	Logger *slog.Logger
}

// AuthHandler handles the Google OAuth login flow and session lifecycle.
type AuthHandler struct {
	oauth         *oauth2.Config
	allowedEmails []string
	secureCookies bool
	signer        *auth.SessionSigner
	users         UserUpserter
	cache         SessionCache
	logger        *slog.Logger

	// overridable in tests
	userinfoURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		allowedEmails: cfg.AllowedEmails,
		secureCookies: cfg.SecureCookies,
		signer:        cfg.Signer,
		users:         cfg.Users,
		cache:         cfg.Cache,
		logger:        cfg.Logger,
		userinfoURL:   googleUserinfoURL,
	}
}

// googleUser is the subset of the userinfo response we consume.
type googleUser struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Login handles GET /auth/google/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := h.setStateCookie(w)
	if err != nil {
		h.logger.Error("oauth_state_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/google/callback.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || r.FormValue("state") != stateCookie.Value {
		h.logger.Warn("oauth_state_mismatch", "ip", r.RemoteAddr)
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "OAuth state mismatch")
		return
	}
	h.clearCookie(w, stateCookieName)

	token, err := h.oauth.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("oauth_exchange_failed", "error", err)
		writeError(w, http.StatusBadGateway, "EXCHANGE_FAILED", "Code exchange failed")
		return
	}

	gu, err := h.fetchUserinfo(r.Context(), token)
	if err != nil {
		h.logger.Error("oauth_userinfo_failed", "error", err)
		writeError(w, http.StatusBadGateway, "USERINFO_FAILED", "Failed to fetch user info")
		return
	}

	if !h.emailAllowed(gu.Email) {
		h.logger.Warn("login_denied", "email", gu.Email)
		writeError(w, http.StatusForbidden, "EMAIL_NOT_ALLOWED", "Your email is not allowed to sign in")
		return
	}

	// Name and image refresh on every login.
	user, err := h.users.UpsertUser(r.Context(), &model.User{
		ID:    ulid.Make().String(),
		Email: gu.Email,
		Name:  gu.Name,
		Image: gu.Picture,
	})
	if err != nil {
		h.logger.Error("user_upsert_failed", "email", gu.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	sessionToken, expiresAt, err := h.signer.Sign(user.Email)
	if err != nil {
		h.logger.Error("session_sign_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sessionToken,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login_success", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout handles POST /auth/logout. It drops the session cookie and
// evicts the cached session so the token stops resolving immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && h.cache != nil {
		_ = h.cache.DeleteSessionUser(r.Context(), auth.QuickHash(cookie.Value))
	}

	h.clearCookie(w, auth.SessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me for the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

func (h *AuthHandler) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	client := h.oauth.Client(ctx, token)
	resp, err := client.Get(h.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if gu.Email == "" {
		return nil, fmt.Errorf("userinfo missing email")
	}

	return &gu, nil
}

// emailAllowed checks the allowlist; an empty allowlist admits everyone.
func (h *AuthHandler) emailAllowed(email string) bool {
	if len(h.allowedEmails) == 0 {
		return true
	}
	for _, allowed := range h.allowedEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

func (h *AuthHandler) setStateCookie(w http.ResponseWriter) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(stateCookieTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
