package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a JSON string field that remembers whether it was sent.
// A *string alone cannot tell `"parent_id": null` (move to root) from a
// missing parent_id (keep the current parent).
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs for keys present in the body, so it sets Present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
