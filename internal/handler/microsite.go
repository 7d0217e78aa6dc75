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

// MicrositeHandler handles HTTP requests for microsite operations.
type MicrositeHandler struct {
	svc    *service.MicrositeService
	logger *slog.Logger
}

// NewMicrositeHandler creates a new MicrositeHandler.
func NewMicrositeHandler(svc *service.MicrositeService, logger *slog.Logger) *MicrositeHandler {
	return &MicrositeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/microsites.
func (h *MicrositeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMicrositeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	site, err := h.svc.CreateMicrosite(r.Context(), service.CreateMicrositeInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Theme:       req.Theme,
		OwnerID:     auth.UserIDFromContext(r.Context()),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("microsite_created",
		"microsite_id", site.ID,
		"slug", site.Slug,
	)

	writeJSON(w, http.StatusCreated, dto.ToMicrositeResponse(site))
}

// Get handles GET /api/v1/microsites/{id}.
func (h *MicrositeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Microsite ID is required")
		return
	}

	site, err := h.svc.GetMicrosite(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMicrositeResponse(site))
}

// List handles GET /api/v1/microsites.
func (h *MicrositeHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.svc.ListMicrosites(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMicrositeListResponse(sites))
}

// Update handles PATCH /api/v1/microsites/{id}.
func (h *MicrositeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Microsite ID is required")
		return
	}

	var req dto.UpdateMicrositeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	site, err := h.svc.UpdateMicrosite(r.Context(), service.UpdateMicrositeInput{
		ID:          id,
		OwnerID:     auth.UserIDFromContext(r.Context()),
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Theme:       req.Theme,
		CoverImage:  req.CoverImage,
		AvatarImage: req.AvatarImage,
		Published:   req.Published,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("microsite_updated",
		"microsite_id", site.ID,
		"slug", site.Slug,
		"published", site.Published,
	)

	writeJSON(w, http.StatusOK, dto.ToMicrositeResponse(site))
}

// Delete handles DELETE /api/v1/microsites/{id}.
func (h *MicrositeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Microsite ID is required")
		return
	}

	if err := h.svc.DeleteMicrosite(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("microsite_deleted", "microsite_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// AddLink handles POST /api/v1/microsites/{id}/links.
func (h *MicrositeHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Microsite ID is required")
		return
	}

	var req dto.AddMicrositeLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.svc.AddLink(r.Context(), service.AddLinkInput{
		MicrositeID: id,
		OwnerID:     auth.UserIDFromContext(r.Context()),
		Title:       req.Title,
		URL:         req.URL,
		Icon:        req.Icon,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("microsite_link_added",
		"microsite_id", id,
		"link_id", link.ID,
		"position", link.Position,
	)

	writeJSON(w, http.StatusCreated, dto.ToMicrositeLinkResponse(link))
}

// ListLinks handles GET /api/v1/microsites/{id}/links.
// Links are returned in display order, inactive ones included.
func (h *MicrositeHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Microsite ID is required")
		return
	}

	links, err := h.svc.ListLinks(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMicrositeLinkListResponse(links))
}

// UpdateLink handles PATCH /api/v1/microsites/{id}/links/{linkID}.
func (h *MicrositeHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")
	if linkID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	var req dto.UpdateMicrositeLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), service.UpdateLinkInput{
		ID:      linkID,
		OwnerID: auth.UserIDFromContext(r.Context()),
		Title:   req.Title,
		URL:     req.URL,
		Icon:    req.Icon,
		Active:  req.Active,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMicrositeLinkResponse(link))
}

// DeleteLink handles DELETE /api/v1/microsites/{id}/links/{linkID}.
func (h *MicrositeHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")
	if linkID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Link ID is required")
		return
	}

	if err := h.svc.DeleteLink(r.Context(), linkID, auth.UserIDFromContext(r.Context())); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("microsite_link_deleted", "link_id", linkID)

	w.WriteHeader(http.StatusNoContent)
}

// ReorderLinks handles POST /api/v1/microsites/{id}/links/reorder.
// The body must list every link of the microsite exactly once.
func (h *MicrositeHandler) ReorderLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Microsite ID is required")
		return
	}

	var req dto.ReorderLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	ownerID := auth.UserIDFromContext(r.Context())
	if err := h.svc.ReorderLinks(r.Context(), id, ownerID, req.LinkIDs); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("microsite_links_reordered",
		"microsite_id", id,
		"link_count", len(req.LinkIDs),
	)

	links, err := h.svc.ListLinks(r.Context(), id, ownerID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMicrositeLinkListResponse(links))
}

// handleServiceError maps service errors to HTTP responses.
func (h *MicrositeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMicrositeNotFound):
		writeError(w, http.StatusNotFound, "MICROSITE_NOT_FOUND", "Microsite not found")
	case errors.Is(err, service.ErrMicrositeLinkNotFound):
		writeError(w, http.StatusNotFound, "MICROSITE_LINK_NOT_FOUND", "Microsite link not found")
	case errors.Is(err, service.ErrSlugExists):
		writeError(w, http.StatusConflict, "SLUG_TAKEN", "Slug already exists")
	case errors.Is(err, service.ErrSlugReserved):
		writeError(w, http.StatusConflict, "SLUG_RESERVED", "Slug is reserved")
	case errors.Is(err, service.ErrInvalidSlug):
		writeError(w, http.StatusBadRequest, "INVALID_SLUG", "Invalid slug format")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrInvalidLinkURL):
		writeError(w, http.StatusBadRequest, "INVALID_LINK_URL", "Invalid link URL")
	case errors.Is(err, service.ErrReorderMismatch):
		writeError(w, http.StatusUnprocessableEntity, "REORDER_MISMATCH", "Reorder must list every link exactly once")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
