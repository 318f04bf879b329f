package handler

import (
	"log/slog"
	"net/http"

	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/httputil"
)

// AdminHandler serves the review queue.
// Routes are wrapped in middleware.RequireAdmin; the services check the flag again.
type AdminHandler struct {
	requests  wikiSvc.EditRequestService
	approvals wikiSvc.ApprovalService
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(requests wikiSvc.EditRequestService, approvals wikiSvc.ApprovalService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		requests:  requests,
		approvals: approvals,
		logger:    logger,
	}
}

// ListPending returns pending requests grouped by target section
// GET /api/admin/wiki/requests
func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	groups, err := h.requests.ListPending(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, groups)
}

// Review returns the comparison context and diffs for one request
// GET /api/admin/wiki/requests/{id}
func (h *AdminHandler) Review(w http.ResponseWriter, r *http.Request) {
	review, err := h.requests.Review(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, review)
}

// Approve applies a request
// POST /api/admin/wiki/requests/{id}/approve
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	note, err := parseNote(w, r)
	if err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	result, err := h.approvals.Approve(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), note)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Reject closes a request without applying it
// POST /api/admin/wiki/requests/{id}/reject
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	note, err := parseNote(w, r)
	if err != nil {
		httputil.RespondBodyError(w, err)
		return
	}

	req, err := h.approvals.Reject(r.Context(), httputil.GetPrincipal(r), r.PathValue("id"), note)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, req)
}
