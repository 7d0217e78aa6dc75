package handler

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tautlabs/taut/internal/analytics"
	"github.com/tautlabs/taut/internal/model"
	"github.com/tautlabs/taut/internal/service"
)

// ResolveHandler serves the public slug namespace: short link redirects,
// password challenges, and microsite pages.
type ResolveHandler struct {
	resolver *service.Resolver
	pages    map[string]*template.Template
	logger   *slog.Logger
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(resolver *service.Resolver, logger *slog.Logger) *ResolveHandler {
	return &ResolveHandler{
		resolver: resolver,
		pages:    pageTemplates(),
		logger:   logger,
	}
}

// passwordPageData feeds the password challenge template.
type passwordPageData struct {
	ShortCode string
	Invalid   bool
	Gone      bool
}

// micrositePageData feeds the microsite template.
type micrositePageData struct {
	Site  *model.Microsite
	Owner *model.User
	Links []*model.MicrositeLink
}

// Resolve handles GET /{slug}, the public dispatch route.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	rawSlug := chi.URLParam(r, "slug")
	start := time.Now()

	outcome, err := h.resolver.Resolve(r.Context(), rawSlug, visitFromRequest(r))
	duration := time.Since(start)
	if err != nil {
		h.logger.Error("resolve_error",
			"slug", rawSlug,
			"error", err,
			"duration_ms", float64(duration.Microseconds())/1000,
		)
		h.renderError(w)
		return
	}

	h.logger.Info("resolve",
		"slug", rawSlug,
		"outcome", outcomeLabel(outcome.Kind),
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	h.renderOutcome(w, r, outcome)
}

// SubmitPassword handles POST /{slug}, the password challenge submission.
func (h *ResolveHandler) SubmitPassword(w http.ResponseWriter, r *http.Request) {
	rawSlug := chi.URLParam(r, "slug")

	if err := r.ParseForm(); err != nil {
		h.renderPage(w, "not_found", http.StatusNotFound, nil)
		return
	}
	password := r.PostFormValue("password")

	outcome, err := h.resolver.VerifyPassword(r.Context(), rawSlug, password, visitFromRequest(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			h.logger.Info("password_rejected", "slug", rawSlug)
			h.renderPage(w, "password", http.StatusUnauthorized, passwordPageData{
				ShortCode: rawSlug,
				Invalid:   true,
			})
			return
		}
		h.logger.Error("password_verify_error", "slug", rawSlug, "error", err)
		h.renderError(w)
		return
	}

	h.logger.Info("password_accepted", "slug", rawSlug)
	h.renderOutcome(w, r, outcome)
}

// ClickThrough handles GET /l/{linkID}, the tracked redirect behind
// every link on a microsite page.
func (h *ResolveHandler) ClickThrough(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")

	outcome, err := h.resolver.ResolveMicrositeLink(r.Context(), linkID, visitFromRequest(r))
	if err != nil {
		h.logger.Error("click_through_error", "link_id", linkID, "error", err)
		h.renderError(w)
		return
	}

	h.renderOutcome(w, r, outcome)
}

// renderOutcome maps a resolve outcome to its HTTP response.
func (h *ResolveHandler) renderOutcome(w http.ResponseWriter, r *http.Request, outcome *service.Outcome) {
	switch outcome.Kind {
	case service.OutcomeRedirect:
		setPublicHeaders(w)
		http.Redirect(w, r, outcome.Destination, http.StatusFound)

	case service.OutcomeExpired:
		h.renderPage(w, "expired", http.StatusGone, nil)

	case service.OutcomePasswordChallenge:
		h.renderPage(w, "password", http.StatusOK, passwordPageData{
			ShortCode: outcome.ShortCode,
		})

	case service.OutcomeMicrosite:
		h.renderPage(w, "microsite", http.StatusOK, micrositePageData{
			Site:  outcome.Microsite,
			Owner: outcome.Owner,
			Links: outcome.Links,
		})

	case service.OutcomeInvalidLink:
		// The challenge view reports the stale link rather than the
		// generic 404 page.
		h.renderPage(w, "password", http.StatusNotFound, passwordPageData{
			ShortCode: outcome.ShortCode,
			Gone:      true,
		})

	default:
		h.renderPage(w, "not_found", http.StatusNotFound, nil)
	}
}

// renderPage executes a template into a buffer first so a render
// failure can still become a clean 500.
func (h *ResolveHandler) renderPage(w http.ResponseWriter, name string, status int, data any) {
	tmpl := h.pages[name]

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		h.logger.Error("template_error", "page", name, "error", err)
		h.renderError(w)
		return
	}

	setPublicHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *ResolveHandler) renderError(w http.ResponseWriter) {
	setPublicHeaders(w)
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

// setPublicHeaders applies security headers on the public path.
func setPublicHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Cache-Control", "private, max-age=0")
}

// visitFromRequest extracts the per-request metadata recorded with clicks.
func visitFromRequest(r *http.Request) service.Visit {
	return service.Visit{
		UserAgent: analytics.TruncateUserAgent(r.Header.Get("User-Agent")),
		Country:   analytics.ExtractCountry(r.Header.Get("CF-IPCountry")),
	}
}

func outcomeLabel(kind service.OutcomeKind) string {
	switch kind {
	case service.OutcomeRedirect:
		return "redirect"
	case service.OutcomeExpired:
		return "expired"
	case service.OutcomePasswordChallenge:
		return "password_challenge"
	case service.OutcomeMicrosite:
		return "microsite"
	case service.OutcomeInvalidLink:
		return "invalid_link"
	default:
		return "not_found"
	}
}
