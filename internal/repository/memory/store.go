// Package memory is an in-process implementation of the wiki repositories.
//
// Sections, versions and requests live in maps keyed by id; parent/child links
// are resolved by lookup, never by pointer. Callers always receive copies.
package memory

import (
	"sync"
	"time"

	models "agora/internal/domain/models/wiki"
	"agora/internal/domain/repositories"
	wikiRepo "agora/internal/domain/repositories/wiki"

	"github.com/google/uuid"
)

// Store holds all wiki state for one process.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	sections map[string]*models.Section
	versions map[string]*storedVersion
	requests map[string]*storedRequest
	seq      int64

	now   func() time.Time
	newID func() string
}

type storedVersion struct {
	models.Version
	seq int64
}

type storedRequest struct {
	models.EditRequest
	seq int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		sections: make(map[string]*models.Section),
		versions: make(map[string]*storedVersion),
		requests: make(map[string]*storedRequest),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock replaces the time source. Used by tests to force timestamp ties.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Sections returns the section repository view of the store
func (s *Store) Sections() wikiRepo.SectionRepository { return &sectionRepository{store: s} }

// Versions returns the version repository view of the store
func (s *Store) Versions() wikiRepo.VersionRepository { return &versionRepository{store: s} }

// EditRequests returns the edit request repository view of the store
func (s *Store) EditRequests() wikiRepo.EditRequestRepository {
	return &editRequestRepository{store: s}
}

// TxManager returns a transaction manager whose rollback undoes every write made
// through the store inside the transaction.
func (s *Store) TxManager() repositories.TransactionManager { return &txManager{store: s} }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSection(in *models.Section) *models.Section {
	out := *in
	out.Description = cloneString(in.Description)
	out.ParentID = cloneString(in.ParentID)
	out.DeletedAt = cloneTime(in.DeletedAt)
	return &out
}

func cloneVersion(in *models.Version) *models.Version {
	out := *in
	out.SourceRequestID = cloneString(in.SourceRequestID)
	return &out
}

func cloneRequest(in *models.EditRequest) *models.EditRequest {
	out := *in
	out.SectionID = cloneString(in.SectionID)
	out.ParentSectionID = cloneString(in.ParentSectionID)
	out.ProposedTitle = cloneString(in.ProposedTitle)
	out.ProposedSlug = cloneString(in.ProposedSlug)
	out.ProposedContent = cloneString(in.ProposedContent)
	out.ProposedOrderIndex = cloneInt(in.ProposedOrderIndex)
	out.ProposedParentID = cloneString(in.ProposedParentID)
	out.BaseVersionID = cloneString(in.BaseVersionID)
	out.ReviewNote = cloneString(in.ReviewNote)
	out.ReviewedBy = cloneString(in.ReviewedBy)
	out.ReviewedAt = cloneTime(in.ReviewedAt)
	return &out
}
