package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxBodyBytes bounds request bodies. Section content is markdown text, so
// 1MB leaves generous headroom.
const MaxBodyBytes = 1 << 20

// ErrBodyTooLarge is returned by ParseJSON when the body exceeds MaxBodyBytes
var ErrBodyTooLarge = errors.New("request body too large")

// ParseJSON decodes a single JSON value from the request body into dest.
// Unknown fields are ignored; the services validate what they need.
// An empty body yields an error wrapping io.EOF.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// RespondBodyError writes the problem response for a ParseJSON failure
func RespondBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	RespondError(w, http.StatusBadRequest, "Invalid request body")
}
