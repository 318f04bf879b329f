package wiki

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
	wikiRepo "agora/internal/domain/repositories/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/repository/memory"
)

var (
	editor = models.Principal{UserID: "editor-1"}
	other  = models.Principal{UserID: "editor-2"}
	admin  = models.Principal{UserID: "admin-1", IsAdmin: true}
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

type harness struct {
	store    *memory.Store
	sections wikiRepo.SectionRepository
	versions wikiRepo.VersionRepository
	requests wikiRepo.EditRequestRepository
	queue    wikiSvc.EditRequestService
	approval wikiSvc.ApprovalService
	reader   wikiSvc.ReaderService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithVersions(t, nil)
}

// newHarnessWithVersions lets a test wrap the version repository to inject failures
func newHarnessWithVersions(t *testing.T, wrap func(wikiRepo.VersionRepository) wikiRepo.VersionRepository) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	versions := store.Versions()
	if wrap != nil {
		versions = wrap(versions)
	}
	h := &harness{
		store:    store,
		sections: store.Sections(),
		versions: versions,
		requests: store.EditRequests(),
	}
	validator := NewResourceValidator(h.sections)
	h.queue = NewEditRequestService(h.sections, h.versions, h.requests, store.TxManager(), validator, logger)
	h.approval = NewApprovalService(h.sections, h.versions, h.requests, store.TxManager(), memory.NewLocker(), validator, logger)
	h.reader = NewReaderService(h.sections, h.versions, validator, logger)
	return h
}

func (h *harness) submit(t *testing.T, p models.Principal, req *wikiSvc.SubmitRequest) *wiki.EditRequest {
	t.Helper()
	out, err := h.queue.Submit(context.Background(), p, req)
	if err != nil {
		t.Fatalf("Submit(%s) failed: %v", req.Kind, err)
	}
	return out
}

func (h *harness) approve(t *testing.T, id string) *wikiSvc.ApprovalResult {
	t.Helper()
	res, err := h.approval.Approve(context.Background(), admin, id, nil)
	if err != nil {
		t.Fatalf("Approve(%s) failed: %v", id, err)
	}
	return res
}

// addSection submits and approves an add_section request
func (h *harness) addSection(t *testing.T, title string, parentID *string, content string) *wiki.Section {
	t.Helper()
	req := h.submit(t, editor, &wikiSvc.SubmitRequest{
		Kind:            wiki.KindAddSection,
		ParentSectionID: parentID,
		Title:           strPtr(title),
		Content:         strPtr(content),
	})
	return h.approve(t, req.ID).Section
}

func editOf(section *wiki.Section, content string) *wikiSvc.SubmitRequest {
	return &wikiSvc.SubmitRequest{
		Kind:      wiki.KindEditSection,
		SectionID: strPtr(section.ID),
		Title:     strPtr(section.Title),
		Slug:      strPtr(section.Slug),
		Content:   strPtr(content),
	}
}

func (h *harness) latest(t *testing.T, sectionID string) *wiki.Version {
	t.Helper()
	v, err := h.versions.GetLatestForSection(context.Background(), sectionID)
	if err != nil {
		t.Fatalf("GetLatestForSection: %v", err)
	}
	return v
}

func (h *harness) status(t *testing.T, id string) wiki.RequestStatus {
	t.Helper()
	req, err := h.requests.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s): %v", id, err)
	}
	return req.Status
}
