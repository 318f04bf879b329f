package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/httputil"
	"agora/internal/repository/memory"
	service "agora/internal/service/wiki"
)

var (
	editor = models.Principal{UserID: "editor-1"}
	other  = models.Principal{UserID: "editor-2"}
	admin  = models.Principal{UserID: "admin-1", IsAdmin: true}
)

type testServer struct {
	t   *testing.T
	mux *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	validator := service.NewResourceValidator(store.Sections())

	queue := service.NewEditRequestService(store.Sections(), store.Versions(), store.EditRequests(), store.TxManager(), validator, logger)
	approvals := service.NewApprovalService(store.Sections(), store.Versions(), store.EditRequests(), store.TxManager(), memory.NewLocker(), validator, logger)
	reader := service.NewReaderService(store.Sections(), store.Versions(), validator, logger)

	wikiHandler := NewWikiHandler(reader, logger)
	editHandler := NewEditRequestHandler(queue, logger)
	adminHandler := NewAdminHandler(queue, approvals, logger)

	// Admin checks are left to the services here so their errors are exercised
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/wiki/tree", wikiHandler.GetTree)
	mux.HandleFunc("GET /api/wiki/document", wikiHandler.GetDocument)
	mux.HandleFunc("GET /api/wiki/sections/{slug}", wikiHandler.GetSection)
	mux.HandleFunc("GET /api/wiki/sections/{id}/history", wikiHandler.GetHistory)
	mux.HandleFunc("GET /api/wiki/sections/{id}/forbidden-parents", wikiHandler.GetForbiddenParents)
	mux.HandleFunc("POST /api/wiki/requests", editHandler.Submit)
	mux.HandleFunc("GET /api/wiki/requests/{id}", editHandler.GetRequest)
	mux.HandleFunc("POST /api/wiki/requests/{id}/withdraw", editHandler.Withdraw)
	mux.HandleFunc("GET /api/admin/wiki/requests", adminHandler.ListPending)
	mux.HandleFunc("GET /api/admin/wiki/requests/{id}", adminHandler.Review)
	mux.HandleFunc("POST /api/admin/wiki/requests/{id}/approve", adminHandler.Approve)
	mux.HandleFunc("POST /api/admin/wiki/requests/{id}/reject", adminHandler.Reject)

	return &testServer{t: t, mux: mux}
}

func (s *testServer) do(p models.Principal, method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	if p.UserID != "" {
		r = httputil.WithPrincipal(r, p)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

// addApproved submits and approves an add_section request, returning the new section
func (s *testServer) addApproved(body string) wiki.Section {
	s.t.Helper()
	w := s.do(editor, http.MethodPost, "/api/wiki/requests", body)
	if w.Code != http.StatusCreated {
		s.t.Fatalf("submit: status %d: %s", w.Code, w.Body.String())
	}
	req := decode[wiki.EditRequest](s.t, w)

	w = s.do(admin, http.MethodPost, "/api/admin/wiki/requests/"+req.ID+"/approve", "")
	if w.Code != http.StatusOK {
		s.t.Fatalf("approve: status %d: %s", w.Code, w.Body.String())
	}
	res := decode[wikiSvc.ApprovalResult](s.t, w)
	return *res.Section
}

func TestSubmitApproveAndRead(t *testing.T) {
	s := newTestServer(t)

	w := s.do(editor, http.MethodPost, "/api/wiki/requests",
		`{"request_type":"add_section","title":"Getting Started","content":"Hello"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}
	req := decode[wiki.EditRequest](t, w)
	if req.Status != wiki.StatusPending {
		t.Errorf("status = %s, want pending", req.Status)
	}

	w = s.do(admin, http.MethodGet, "/api/admin/wiki/requests", "")
	groups := decode[[]wiki.RequestGroup](t, w)
	if len(groups) != 1 || groups[0].SectionID != "new" || len(groups[0].Requests) != 1 {
		t.Fatalf("unexpected pending groups: %+v", groups)
	}

	w = s.do(admin, http.MethodPost, "/api/admin/wiki/requests/"+req.ID+"/approve", `{"note":"looks good"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", w.Code, w.Body.String())
	}
	res := decode[wikiSvc.ApprovalResult](t, w)
	if res.Request.Status != wiki.StatusApproved || res.Request.ReviewNote == nil || *res.Request.ReviewNote != "looks good" {
		t.Errorf("unexpected request after approval: %+v", res.Request)
	}

	w = s.do(models.Principal{}, http.MethodGet, "/api/wiki/sections/getting-started", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get section status = %d: %s", w.Code, w.Body.String())
	}
	view := decode[wikiSvc.SectionView](t, w)
	if view.Latest == nil || view.Latest.Content != "Hello" {
		t.Errorf("latest version = %+v", view.Latest)
	}

	w = s.do(models.Principal{}, http.MethodGet, "/api/wiki/document", "")
	doc := decode[map[string]string](t, w)
	if !strings.Contains(doc["content"], "# Getting Started\n\nHello") {
		t.Errorf("document = %q", doc["content"])
	}
}

func TestDocumentAsMarkdown(t *testing.T) {
	s := newTestServer(t)
	s.addApproved(`{"request_type":"add_section","title":"Intro","content":"Body"}`)

	r := httptest.NewRequest(http.MethodGet, "/api/wiki/document", nil)
	r.Header.Set("Accept", "text/markdown")
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, r)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.String() != "# Intro\n\nBody\n\n---\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestErrorResponses(t *testing.T) {
	s := newTestServer(t)
	root := s.addApproved(`{"request_type":"add_section","title":"Root","content":"r"}`)
	child := s.addApproved(`{"request_type":"add_section","title":"Child","content":"c","parent_section_id":"` + root.ID + `"}`)

	t.Run("validation carries field errors", func(t *testing.T) {
		w := s.do(editor, http.MethodPost, "/api/wiki/requests", `{"request_type":"add_section","title":"","content":"x"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		body := decode[map[string]interface{}](t, w)
		fields, ok := body["errors"].(map[string]interface{})
		if !ok || fields["title"] == nil {
			t.Errorf("expected title field error, got %v", body)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.do(editor, http.MethodPost, "/api/wiki/requests", `{"request_type":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("anonymous submit", func(t *testing.T) {
		w := s.do(models.Principal{}, http.MethodPost, "/api/wiki/requests", `{"request_type":"delete_section","section_id":"`+child.ID+`"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("cycle rejected on submit", func(t *testing.T) {
		body := `{"request_type":"edit_section","section_id":"` + root.ID + `","title":"Root","slug":"root","content":"r","parent_id":"` + child.ID + `"}`
		w := s.do(editor, http.MethodPost, "/api/wiki/requests", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		fields, _ := decode[map[string]interface{}](t, w)["errors"].(map[string]interface{})
		if fields["parent_id"] == nil {
			t.Errorf("expected parent_id field error, got %v", fields)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		w := s.do(models.Principal{}, http.MethodGet, "/api/wiki/sections/nope", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("non admin approve", func(t *testing.T) {
		w := s.do(editor, http.MethodPost, "/api/wiki/requests", `{"request_type":"delete_section","section_id":"`+child.ID+`"}`)
		req := decode[wiki.EditRequest](t, w)

		w = s.do(editor, http.MethodPost, "/api/admin/wiki/requests/"+req.ID+"/approve", "")
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("double resolution conflicts", func(t *testing.T) {
		w := s.do(editor, http.MethodPost, "/api/wiki/requests", `{"request_type":"add_section","title":"Twice","content":"t"}`)
		req := decode[wiki.EditRequest](t, w)

		if w := s.do(admin, http.MethodPost, "/api/admin/wiki/requests/"+req.ID+"/reject", `{"note":"no"}`); w.Code != http.StatusOK {
			t.Fatalf("reject status = %d: %s", w.Code, w.Body.String())
		}
		w = s.do(admin, http.MethodPost, "/api/admin/wiki/requests/"+req.ID+"/approve", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d", w.Code)
		}
		body := decode[map[string]interface{}](t, w)
		if body["resource_type"] != "edit_request" || body["resource_id"] != req.ID {
			t.Errorf("conflict extras = %v", body)
		}
	})

	t.Run("withdraw by someone else", func(t *testing.T) {
		w := s.do(editor, http.MethodPost, "/api/wiki/requests", `{"request_type":"add_section","title":"Mine","content":"m"}`)
		req := decode[wiki.EditRequest](t, w)

		if w := s.do(other, http.MethodPost, "/api/wiki/requests/"+req.ID+"/withdraw", ""); w.Code != http.StatusForbidden {
			t.Errorf("other user status = %d", w.Code)
		}
		if w := s.do(editor, http.MethodPost, "/api/wiki/requests/"+req.ID+"/withdraw", ""); w.Code != http.StatusOK {
			t.Errorf("requester status = %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestEditParentTriState(t *testing.T) {
	s := newTestServer(t)
	root := s.addApproved(`{"request_type":"add_section","title":"Root","content":"r"}`)
	child := s.addApproved(`{"request_type":"add_section","title":"Child","content":"c","parent_section_id":"` + root.ID + `"}`)

	// parent_id absent keeps the current parent
	w := s.do(editor, http.MethodPost, "/api/wiki/requests",
		`{"request_type":"edit_section","section_id":"`+child.ID+`","title":"Child","slug":"child","content":"c2"}`)
	kept := decode[wiki.EditRequest](t, w)
	if kept.ProposedParentID == nil || *kept.ProposedParentID != root.ID {
		t.Errorf("absent parent_id: proposed parent = %v, want %s", kept.ProposedParentID, root.ID)
	}

	// parent_id null moves to root
	w = s.do(editor, http.MethodPost, "/api/wiki/requests",
		`{"request_type":"edit_section","section_id":"`+child.ID+`","title":"Child","slug":"child","content":"c2","parent_id":null}`)
	moved := decode[wiki.EditRequest](t, w)
	if moved.ProposedParentID != nil {
		t.Errorf("null parent_id: proposed parent = %v, want nil", *moved.ProposedParentID)
	}

	w = s.do(admin, http.MethodGet, "/api/admin/wiki/requests/"+moved.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("review status = %d: %s", w.Code, w.Body.String())
	}
	review := decode[wiki.Review](t, w)
	if review.BaseOutdated {
		t.Error("fresh edit should not be base-outdated")
	}
	if len(review.Comparisons.ProposedVsLatest) == 0 {
		t.Error("expected a proposed vs latest diff")
	}

	s.do(admin, http.MethodPost, "/api/admin/wiki/requests/"+moved.ID+"/approve", "")

	w = s.do(models.Principal{}, http.MethodGet, "/api/wiki/tree", "")
	tree := decode[[]*wiki.TreeNode](t, w)
	if len(tree) != 2 {
		t.Errorf("expected child promoted to root, got %d roots", len(tree))
	}

	w = s.do(models.Principal{}, http.MethodGet, "/api/wiki/sections/"+child.ID+"/history", "")
	history := decode[[]wiki.Version](t, w)
	if len(history) != 2 || history[0].Content != "c2" {
		t.Errorf("history = %+v", history)
	}
}

func TestForbiddenParents(t *testing.T) {
	s := newTestServer(t)
	root := s.addApproved(`{"request_type":"add_section","title":"Root","content":"r"}`)
	child := s.addApproved(`{"request_type":"add_section","title":"Child","content":"c","parent_section_id":"` + root.ID + `"}`)

	w := s.do(models.Principal{}, http.MethodGet, "/api/wiki/sections/"+root.ID+"/forbidden-parents", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decode[map[string][]string](t, w)
	ids := body["forbidden_parent_ids"]
	if len(ids) != 2 {
		t.Fatalf("forbidden = %v, want root and child", ids)
	}
	seen := map[string]bool{ids[0]: true, ids[1]: true}
	if !seen[root.ID] || !seen[child.ID] {
		t.Errorf("forbidden = %v", ids)
	}
}
