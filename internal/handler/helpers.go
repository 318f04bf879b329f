package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"agora/internal/domain"
	"agora/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError
	var txErr *domain.TransactionError

	switch {
	case errors.As(err, &validationErr):
		var extras map[string]interface{}
		if len(validationErr.Fields) > 0 {
			extras = map[string]interface{}{"errors": validationErr.Fields}
		}
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Error(), extras)
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.As(err, &txErr):
		logger.Error("approval transaction failed",
			"request_id", txErr.RequestID,
			"op", txErr.Op,
			"error", txErr.Err,
		)
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, txErr.Error(), map[string]interface{}{
			"request_id": txErr.RequestID,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// noteRequest is the optional body of approve, reject and withdraw
type noteRequest struct {
	Note *string `json:"note"`
}

// parseNote reads an optional review note. An empty body means no note.
func parseNote(w http.ResponseWriter, r *http.Request) (*string, error) {
	var req noteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return req.Note, nil
}
