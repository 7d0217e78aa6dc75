package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tautlabs/taut/internal/auth"
	"github.com/tautlabs/taut/internal/handler/dto"
	"github.com/tautlabs/taut/internal/service"
)

// ShortLinkHandler handles HTTP requests for short link operations.
type ShortLinkHandler struct {
	svc    *service.ShortLinkService
	logger *slog.Logger
}

// NewShortLinkHandler creates a new ShortLinkHandler.
func NewShortLinkHandler(svc *service.ShortLinkService, logger *slog.Logger) *ShortLinkHandler {
	return &ShortLinkHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/links.
func (h *ShortLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateShortLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.svc.CreateShortLink(r.Context(), service.CreateShortLinkInput{
		Destination: req.Destination,
		Alias:       req.Alias,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
		OwnerID:     auth.UserIDFromContext(r.Context()),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("short_link_created",
		"link_id", link.ID,
		"short_code", link.ShortCode,
		"has_custom_alias", req.Alias != "",
		"protected", link.IsProtected(),
	)

	writeJSON(w, http.StatusCreated, dto.ToShortLinkResponse(link, h.svc.ShortURL(link.ShortCode)))
}

// List handles GET /api/v1/links. Links are returned newest first.
func (h *ShortLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListShortLinks(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	responses := make([]dto.ShortLinkResponse, len(links))
	for i, link := range links {
		responses[i] = *dto.ToShortLinkResponse(link, h.svc.ShortURL(link.ShortCode))
	}
	writeJSON(w, http.StatusOK, dto.ShortLinkListResponse{Data: responses})
}

// Delete handles DELETE /api/v1/links/{id}.
func (h *ShortLinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	if err := h.svc.DeleteShortLink(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("short_link_deleted", "link_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ShortLinkHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrShortLinkNotFound):
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "Link not found")
	case errors.Is(err, service.ErrAliasExists):
		writeError(w, http.StatusConflict, "ALIAS_TAKEN", "Alias already exists")
	case errors.Is(err, service.ErrAliasReserved):
		writeError(w, http.StatusConflict, "ALIAS_RESERVED", "Alias is reserved")
	case errors.Is(err, service.ErrInvalidAlias):
		writeError(w, http.StatusBadRequest, "INVALID_ALIAS", "Invalid alias format")
	case errors.Is(err, service.ErrInvalidDestination):
		writeError(w, http.StatusBadRequest, "INVALID_DESTINATION", "Invalid destination URL")
	case errors.Is(err, service.ErrURLTooLong):
		writeError(w, http.StatusBadRequest, "URL_TOO_LONG", "Destination URL exceeds maximum length")
	case errors.Is(err, service.ErrExpiresInPast):
		writeError(w, http.StatusUnprocessableEntity, "EXPIRES_IN_PAST", "Expiry date must be in the future")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
