package handler

import (
	"log/slog"
	"net/http"

	wiki "agora/internal/domain/models/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/httputil"
)

// EditRequestHandler handles proposals from editors
type EditRequestHandler struct {
	service wikiSvc.EditRequestService
	logger  *slog.Logger
}

// NewEditRequestHandler creates a new edit request handler
func NewEditRequestHandler(service wikiSvc.EditRequestService, logger *slog.Logger) *EditRequestHandler {
	return &EditRequestHandler{
		service: service,
		logger:  logger,
	}
}

// submitRequestDTO is the HTTP request body for POST /api/wiki/requests.
// ParentID uses OptionalString so an absent field (keep parent) differs from null (move to root).
type submitRequestDTO struct {
	RequestType     string                  `json:"request_type"`
	SectionID       *string                 `json:"section_id"`
	ParentSectionID *string                 `json:"parent_section_id"`
	Title           *string                 `json:"title"`
	Slug            *string                 `json:"slug"`
	Content         *string                 `json:"content"`
	OrderIndex      *int                    `json:"order_index"`
	ParentID        httputil.OptionalString `json:"parent_id"`
	BaseVersionID   *string                 `json:"base_version_id"`
}

func (d *submitRequestDTO) toServiceRequest() *wikiSvc.SubmitRequest {
	return &wikiSvc.SubmitRequest{
		Kind:            wiki.RequestKind(d.RequestType),
		SectionID:       d.SectionID,
		ParentSectionID: d.ParentSectionID,
		Title:           d.Title,
		Slug:            d.Slug,
		Content:         d.Content,
		OrderIndex:      d.OrderIndex,
		ParentID: wikiSvc.OptionalParent{
			Present: d.ParentID.Present,
			Value:   d.ParentID.Value,
		},
		BaseVersionID: d.BaseVersionID,
	}
}

// Submit stores a proposal for review
// POST /api/wiki/requests
func (h *EditRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto submitRequestDTO
	if err := httputil.ParseJSON(w, r, &dto); err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	req, err := h.service.Submit(r.Context(), httputil.GetPrincipal(r), dto.toServiceRequest())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, req)
}

// GetRequest returns one request to its requester or an admin
// GET /api/wiki/requests/{id}
func (h *EditRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.GetRequest(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}

// Withdraw retracts the caller's own pending request
// POST /api/wiki/requests/{id}/withdraw
func (h *EditRequestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	note, err := parseNote(w, r)
	if err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	req, err := h.service.Withdraw(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), note)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}
