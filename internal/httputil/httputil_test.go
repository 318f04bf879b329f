package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/domain/models"
)

func TestOptionalString(t *testing.T) {
	type body struct {
		ParentID OptionalString `json:"parent_id"`
	}

	tests := []struct {
		name        string
		input       string
		wantPresent bool
		wantValue   *string
	}{
		{"absent", `{}`, false, nil},
		{"null", `{"parent_id": null}`, true, nil},
		{"value", `{"parent_id": "abc"}`, true, strPtr("abc")},
		{"empty", `{"parent_id": ""}`, true, strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			if err := json.Unmarshal([]byte(tt.input), &b); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if b.ParentID.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", b.ParentID.Present, tt.wantPresent)
			}
			switch {
			case tt.wantValue == nil && b.ParentID.Value != nil:
				t.Errorf("Value = %q, want nil", *b.ParentID.Value)
			case tt.wantValue != nil && (b.ParentID.Value == nil || *b.ParentID.Value != *tt.wantValue):
				t.Errorf("Value = %v, want %q", b.ParentID.Value, *tt.wantValue)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if p := GetPrincipal(r); p.UserID != "" || p.IsAdmin {
		t.Errorf("expected zero principal, got %+v", p)
	}

	r = WithPrincipal(r, models.Principal{UserID: "u1", IsAdmin: true})
	if GetUserID(r) != "u1" || !GetPrincipal(r).IsAdmin {
		t.Errorf("principal not propagated: %+v", GetPrincipal(r))
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	w := httptest.NewRecorder()
	RespondErrorWithExtras(w, http.StatusBadRequest, "bad title", map[string]interface{}{
		"errors": map[string]string{"title": "cannot be blank"},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["detail"] != "bad title" {
		t.Errorf("detail = %v", got["detail"])
	}
	if _, ok := got["errors"].(map[string]interface{}); !ok {
		t.Errorf("errors extra missing: %v", got)
	}
}

func TestParseJSONRejectsMalformedBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))

	var dest map[string]interface{}
	if err := ParseJSON(w, r, &dest); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParseJSONBodyTooLarge(t *testing.T) {
	big := `{"content":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

	var dest map[string]interface{}
	err := ParseJSON(w, r, &dest)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("err = %v, want ErrBodyTooLarge", err)
	}

	RespondBodyError(w, err)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestRespondErrorUnknownStatusType(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, http.StatusTeapot, "")

	var got map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["type"] != "about:blank" {
		t.Errorf("type = %v", got["type"])
	}
	if _, ok := got["detail"]; ok {
		t.Error("empty detail should be omitted")
	}
}

func strPtr(s string) *string { return &s }
