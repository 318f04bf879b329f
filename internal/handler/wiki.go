package handler

import (
	"log/slog"
	"net/http"

	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/httputil"
)

// WikiHandler serves the published wiki
type WikiHandler struct {
	reader wikiSvc.ReaderService
	logger *slog.Logger
}

// NewWikiHandler creates a new wiki handler
func NewWikiHandler(reader wikiSvc.ReaderService, logger *slog.Logger) *WikiHandler {
	return &WikiHandler{
		reader: reader,
		logger: logger,
	}
}

// HealthCheck reports liveness
// GET /health
func (h *WikiHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTree returns the nested section forest
// GET /api/wiki/tree
func (h *WikiHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.reader.GetTree(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetOutline returns sections in reading order with depth
// GET /api/wiki/outline
func (h *WikiHandler) GetOutline(w http.ResponseWriter, r *http.Request) {
	outline, err := h.reader.GetOutline(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, outline)
}

// GetDocument returns the whole wiki as one markdown document.
// Clients that ask for text/markdown get the raw text.
// GET /api/wiki/document
func (h *WikiHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.reader.GetDocument(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if r.Header.Get("Accept") == "text/markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc))
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"content": doc})
}

// GetSection returns a section and its latest content
// GET /api/wiki/sections/{slug}
func (h *WikiHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Slug is required")
		return
	}

	view, err := h.reader.GetSection(r.Context(), slug)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// GetHistory returns every version of a section, newest first
// GET /api/wiki/sections/{id}/history
func (h *WikiHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	versions, err := h.reader.GetHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// GetForbiddenParents lists the sections a section may not be moved under
// GET /api/wiki/sections/{id}/forbidden-parents
func (h *WikiHandler) GetForbiddenParents(w http.ResponseWriter, r *http.Request) {
	ids, err := h.reader.GetForbiddenParents(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string][]string{"forbidden_parent_ids": ids})
}
