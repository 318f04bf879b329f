package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/internal/config"
	"agora/internal/domain"
	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
	"agora/internal/domain/repositories"
	wikiRepo "agora/internal/domain/repositories/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/wikidiff"
	"agora/internal/wikitree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	newSectionsGroupID    = "new"
	newSectionsGroupTitle = "New Sections"
	unknownSectionTitle   = "Unknown Section"
)

type editRequestService struct {
	sectionRepo wikiRepo.SectionRepository
	versionRepo wikiRepo.VersionRepository
	requestRepo wikiRepo.EditRequestRepository
	txManager   repositories.TransactionManager
	validator   *ResourceValidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewEditRequestService creates a new edit request service
func NewEditRequestService(
	sectionRepo wikiRepo.SectionRepository,
	versionRepo wikiRepo.VersionRepository,
	requestRepo wikiRepo.EditRequestRepository,
	txManager repositories.TransactionManager,
	validator *ResourceValidator,
	logger *slog.Logger,
) wikiSvc.EditRequestService {
	return &editRequestService{
		sectionRepo: sectionRepo,
		versionRepo: versionRepo,
		requestRepo: requestRepo,
		txManager:   txManager,
		validator:   validator,
		logger:      logger,
		now:         time.Now,
	}
}

// proposal holds the normalized fields that are validated for add/edit
type proposal struct {
	SectionID  string `json:"section_id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Content    string `json:"content"`
	OrderIndex *int   `json:"order_index"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Submit validates a proposal and stores it as a pending request
func (s *editRequestService) Submit(ctx context.Context, principal models.Principal, req *wikiSvc.SubmitRequest) (*wiki.EditRequest, error) {
	if principal.UserID == "" {
		return nil, &domain.UnauthorizedError{Message: "sign in to propose changes"}
	}
	if !req.Kind.Valid() {
		return nil, fieldError("request_type", fmt.Sprintf("must be one of %s, %s, %s",
			wiki.KindAddSection, wiki.KindEditSection, wiki.KindDeleteSection))
	}

	p := proposal{
		SectionID:  strings.TrimSpace(deref(req.SectionID)),
		Title:      strings.TrimSpace(deref(req.Title)),
		Slug:       strings.TrimSpace(deref(req.Slug)),
		Content:    deref(req.Content),
		OrderIndex: req.OrderIndex,
	}
	if req.Kind == wiki.KindAddSection && p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if err := s.validateProposal(req.Kind, &p); err != nil {
		return nil, err
	}

	request := &wiki.EditRequest{
		Kind:        req.Kind,
		Status:      wiki.StatusPending,
		RequestedBy: principal.UserID,
		RequestedAt: s.now(),
	}

	var err error
	switch req.Kind {
	case wiki.KindAddSection:
		err = s.prepareAdd(ctx, req, &p, request)
	case wiki.KindEditSection:
		err = s.prepareEdit(ctx, req, &p, request)
	case wiki.KindDeleteSection:
		err = s.prepareDelete(ctx, &p, request)
	}
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("edit request submitted",
		"id", request.ID,
		"request_type", request.Kind,
		"section_id", request.SectionID,
		"requested_by", request.RequestedBy,
	)

	return request, nil
}

// validateProposal checks required fields per kind
func (s *editRequestService) validateProposal(kind wiki.RequestKind, p *proposal) error {
	if kind == wiki.KindDeleteSection {
		return toValidationError(validation.ValidateStruct(p,
			validation.Field(&p.SectionID, validation.Required),
		))
	}

	rules := []*validation.FieldRules{
		validation.Field(&p.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxSectionTitleLength),
		),
		validation.Field(&p.Slug,
			validation.Required,
			validation.Length(1, config.MaxSlugLength),
			validation.Match(slugPattern).Error("must start with a letter or digit and contain only lowercase letters, digits, '-' and '_'"),
		),
		validation.Field(&p.Content,
			validation.Required,
			validation.Length(1, config.MaxSectionContentLength),
		),
		validation.Field(&p.OrderIndex, validation.Min(0)),
	}
	if kind == wiki.KindEditSection {
		rules = append(rules, validation.Field(&p.SectionID, validation.Required))
	}
	return toValidationError(validation.ValidateStruct(p, rules...))
}

func (s *editRequestService) prepareAdd(ctx context.Context, req *wikiSvc.SubmitRequest, p *proposal, out *wiki.EditRequest) error {
	parentID := req.ParentSectionID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if err := s.validator.ValidateParent(ctx, parentID); err != nil {
		return err
	}
	if err := s.validator.CheckSlugAvailable(ctx, p.Slug, ""); err != nil {
		return err
	}

	order := p.OrderIndex
	if order == nil {
		live, err := s.sectionRepo.ListNonDeleted(ctx)
		if err != nil {
			return fmt.Errorf("list sections: %w", err)
		}
		next := wikitree.NextOrderIndex(live, parentID)
		order = &next
	}

	out.ParentSectionID = parentID
	out.ProposedParentID = parentID
	out.ProposedTitle = &p.Title
	out.ProposedSlug = &p.Slug
	out.ProposedContent = &p.Content
	out.ProposedOrderIndex = order
	return nil
}

func (s *editRequestService) prepareEdit(ctx context.Context, req *wikiSvc.SubmitRequest, p *proposal, out *wiki.EditRequest) error {
	target, err := s.validator.ValidateSection(ctx, p.SectionID)
	if err != nil {
		return err
	}

	// Tri-state: only move if the field was present in the request
	parentID := target.ParentID
	if req.ParentID.Present {
		parentID = req.ParentID.Value
		if parentID != nil && *parentID == "" {
			parentID = nil
		}
		if err := s.validator.ValidateParent(ctx, parentID); err != nil {
			return err
		}
		live, err := s.sectionRepo.ListNonDeleted(ctx)
		if err != nil {
			return fmt.Errorf("list sections: %w", err)
		}
		if !wikitree.CanReparent(live, target.ID, parentID) {
			return fieldError("parent_id", "a section cannot be moved under itself or one of its descendants")
		}
	}

	if p.Slug != target.Slug {
		if err := s.validator.CheckSlugAvailable(ctx, p.Slug, target.ID); err != nil {
			return err
		}
	}

	order := p.OrderIndex
	if order == nil {
		current := target.OrderIndex
		order = &current
	}

	base, err := s.resolveBase(ctx, target.ID, req.BaseVersionID)
	if err != nil {
		return err
	}

	out.SectionID = &target.ID
	out.ProposedParentID = parentID
	out.ProposedTitle = &p.Title
	out.ProposedSlug = &p.Slug
	out.ProposedContent = &p.Content
	out.ProposedOrderIndex = order
	if base != nil {
		out.BaseVersionID = &base.ID
	}
	return nil
}

// resolveBase returns the explicit base version (which must belong to the section)
// or the section's current latest version.
func (s *editRequestService) resolveBase(ctx context.Context, sectionID string, baseID *string) (*wiki.Version, error) {
	if baseID == nil || *baseID == "" {
		return s.versionRepo.GetLatestForSection(ctx, sectionID)
	}

	base, err := s.versionRepo.GetByID(ctx, *baseID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fieldError("base_version_id", "version does not exist")
	}
	if err != nil {
		return nil, err
	}
	if base.SectionID != sectionID {
		return nil, fieldError("base_version_id", "version belongs to a different section")
	}
	return base, nil
}

func (s *editRequestService) prepareDelete(ctx context.Context, p *proposal, out *wiki.EditRequest) error {
	target, err := s.validator.ValidateSection(ctx, p.SectionID)
	if err != nil {
		return err
	}
	out.SectionID = &target.ID
	return nil
}

// GetRequest returns a single request; only its requester or an admin may read it
func (s *editRequestService) GetRequest(ctx context.Context, principal models.Principal, id string) (*wiki.EditRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin && req.RequestedBy != principal.UserID {
		return nil, &domain.ForbiddenError{Message: "only the requester or an admin can view this request"}
	}
	return req, nil
}

// ListPending groups pending requests: all add_section requests first under a
// synthetic group, then one group per target section in order of each
// section's most recent request.
func (s *editRequestService) ListPending(ctx context.Context) ([]wiki.RequestGroup, error) {
	pending, err := s.requestRepo.ListByStatus(ctx, wiki.StatusPending)
	if err != nil {
		return nil, err
	}

	live, err := s.sectionRepo.ListNonDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	titles := make(map[string]string, len(live))
	for _, sec := range live {
		titles[sec.ID] = sec.Title
	}

	newGroup := wiki.RequestGroup{
		SectionID:    newSectionsGroupID,
		SectionTitle: newSectionsGroupTitle,
		Requests:     []*wiki.EditRequest{},
	}
	bySection := make(map[string]*wiki.RequestGroup)
	order := make([]string, 0)

	for _, req := range pending {
		if req.Kind == wiki.KindAddSection || req.SectionID == nil {
			newGroup.Requests = append(newGroup.Requests, req)
			continue
		}
		id := *req.SectionID
		group, ok := bySection[id]
		if !ok {
			title, found := titles[id]
			if !found {
				title = unknownSectionTitle
			}
			group = &wiki.RequestGroup{SectionID: id, SectionTitle: title, Requests: []*wiki.EditRequest{}}
			bySection[id] = group
			order = append(order, id)
		}
		group.Requests = append(group.Requests, req)
	}

	groups := make([]wiki.RequestGroup, 0, len(order)+1)
	if len(newGroup.Requests) > 0 {
		groups = append(groups, newGroup)
	}
	for _, id := range order {
		groups = append(groups, *bySection[id])
	}

	s.logger.Debug("pending requests grouped", "requests", len(pending), "groups", len(groups))
	return groups, nil
}

// LoadComparisonContext resolves the base version, the current latest version,
// the current section and the siblings under the proposed parent. Missing
// snapshots come back as nil rather than errors.
func (s *editRequestService) LoadComparisonContext(ctx context.Context, id string) (*wiki.ComparisonContext, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cc := &wiki.ComparisonContext{Request: req, Siblings: []wiki.Section{}}

	if req.BaseVersionID != nil {
		base, err := s.versionRepo.GetByID(ctx, *req.BaseVersionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		cc.BaseVersion = base
	}

	if req.TargetsSection() {
		latest, err := s.versionRepo.GetLatestForSection(ctx, *req.SectionID)
		if err != nil {
			return nil, err
		}
		cc.LatestVersion = latest

		current, err := s.sectionRepo.GetByID(ctx, *req.SectionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		cc.CurrentSection = current
	}

	var parentID *string
	switch req.Kind {
	case wiki.KindAddSection:
		parentID = req.ParentSectionID
	case wiki.KindEditSection:
		parentID = req.ProposedParentID
	case wiki.KindDeleteSection:
		if cc.CurrentSection != nil {
			parentID = cc.CurrentSection.ParentID
		}
	}

	live, err := s.sectionRepo.ListNonDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	for _, sib := range wikitree.Siblings(live, parentID) {
		if req.SectionID != nil && sib.ID == *req.SectionID {
			continue
		}
		cc.Siblings = append(cc.Siblings, sib)
	}

	return cc, nil
}

// Review returns the comparison context with the three diffs and the base-outdated flag
func (s *editRequestService) Review(ctx context.Context, id string) (*wiki.Review, error) {
	cc, err := s.LoadComparisonContext(ctx, id)
	if err != nil {
		return nil, err
	}
	review := wikidiff.Review(*cc)

	if review.BaseOutdated {
		s.logger.Debug("request base is outdated",
			"id", id,
			"base_version_id", cc.Request.BaseVersionID,
			"latest_version_id", cc.LatestVersion.ID,
		)
	}
	return review, nil
}

// Withdraw retracts a pending request. Only the original requester may withdraw.
func (s *editRequestService) Withdraw(ctx context.Context, principal models.Principal, id string, note *string) (*wiki.EditRequest, error) {
	if principal.UserID == "" {
		return nil, &domain.UnauthorizedError{Message: "sign in to withdraw requests"}
	}
	if err := validateNote(note); err != nil {
		return nil, err
	}

	var updated *wiki.EditRequest
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.GetForReview(txCtx, id)
		if err != nil {
			return err
		}
		if req.RequestedBy != principal.UserID {
			return &domain.ForbiddenError{Message: "only the requester can withdraw this request"}
		}
		if err := s.requestRepo.UpdateStatus(txCtx, id, wiki.Resolution{
			Status:     wiki.StatusWithdrawn,
			ReviewedBy: principal.UserID,
			ReviewedAt: s.now(),
			Note:       note,
		}); err != nil {
			return err
		}
		updated, err = s.requestRepo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("edit request withdrawn", "id", id, "requested_by", principal.UserID)
	return updated, nil
}

// validateNote bounds an optional review note
func validateNote(note *string) error {
	if note == nil {
		return nil
	}
	n := struct {
		Note string `json:"note"`
	}{Note: *note}
	return toValidationError(validation.ValidateStruct(&n,
		validation.Field(&n.Note, validation.RuneLength(0, config.MaxReviewNoteLength)),
	))
}
