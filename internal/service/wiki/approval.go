package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/domain"
	"agora/internal/domain/models"
	wiki "agora/internal/domain/models/wiki"
	"agora/internal/domain/repositories"
	wikiRepo "agora/internal/domain/repositories/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
	"agora/internal/wikitree"
)

// approvalLockKey serializes all approvals: overlapping subtrees are not
// detected, so only one approval may apply at a time.
const approvalLockKey = "wiki:approvals"

type approvalService struct {
	sectionRepo wikiRepo.SectionRepository
	versionRepo wikiRepo.VersionRepository
	requestRepo wikiRepo.EditRequestRepository
	txManager   repositories.TransactionManager
	locker      repositories.Locker
	validator   *ResourceValidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	sectionRepo wikiRepo.SectionRepository,
	versionRepo wikiRepo.VersionRepository,
	requestRepo wikiRepo.EditRequestRepository,
	txManager repositories.TransactionManager,
	locker repositories.Locker,
	validator *ResourceValidator,
	logger *slog.Logger,
) wikiSvc.ApprovalService {
	return &approvalService{
		sectionRepo: sectionRepo,
		versionRepo: versionRepo,
		requestRepo: requestRepo,
		txManager:   txManager,
		locker:      locker,
		validator:   validator,
		logger:      logger,
		now:         time.Now,
	}
}

// step names the part of the approval in flight, for TransactionError reporting
type step struct {
	name string
}

func (s *step) set(name string) { s.name = name }

// Approve applies a pending request and marks it approved in one transaction.
// The tree is re-validated against its state at approval time.
func (s *approvalService) Approve(ctx context.Context, reviewer models.Principal, id string, note *string) (*wikiSvc.ApprovalResult, error) {
	if err := requireAdmin(reviewer); err != nil {
		return nil, err
	}
	if err := validateNote(note); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, approvalLockKey)
	if err != nil {
		return nil, &domain.TransactionError{RequestID: id, Op: "acquire approval lock", Err: err}
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger.Warn("failed to release approval lock", "id", id, "error", err)
		}
	}()

	cur := &step{name: "load request"}
	var result *wikiSvc.ApprovalResult

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		req, err := s.requestRepo.GetForReview(txCtx, id)
		if err != nil {
			return err
		}
		if req.Status != wiki.StatusPending {
			return alreadyResolved(req)
		}

		result = &wikiSvc.ApprovalResult{}
		switch req.Kind {
		case wiki.KindAddSection:
			err = s.applyAdd(txCtx, cur, req, result)
		case wiki.KindEditSection:
			err = s.applyEdit(txCtx, cur, req, result)
		case wiki.KindDeleteSection:
			err = s.applyDelete(txCtx, cur, req, result)
		default:
			err = fieldError("request_type", fmt.Sprintf("unknown request type %q", req.Kind))
		}
		if err != nil {
			return err
		}

		cur.set("mark request approved")
		if err := s.requestRepo.UpdateStatus(txCtx, id, wiki.Resolution{
			Status:     wiki.StatusApproved,
			ReviewedBy: reviewer.UserID,
			ReviewedAt: s.now(),
			Note:       note,
		}); err != nil {
			return err
		}

		cur.set("reload request")
		result.Request, err = s.requestRepo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		s.logger.Warn("edit request approval failed",
			"id", id,
			"step", cur.name,
			"error", err,
		)
		return nil, asTransactionError(id, cur.name, err)
	}

	s.logger.Info("edit request approved",
		"id", id,
		"request_type", result.Request.Kind,
		"section_id", sectionIDOf(result),
		"reviewed_by", reviewer.UserID,
		"deleted", len(result.DeletedIDs),
	)

	return result, nil
}

func (s *approvalService) applyAdd(ctx context.Context, cur *step, req *wiki.EditRequest, result *wikiSvc.ApprovalResult) error {
	cur.set("validate parent")
	parentID := req.ParentSectionID
	if err := s.validator.ValidateParent(ctx, parentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldError("parent_section_id", "parent section no longer exists")
		}
		return err
	}

	cur.set("check slug")
	slug := deref(req.ProposedSlug)
	if err := s.validator.CheckSlugAvailable(ctx, slug, ""); err != nil {
		return err
	}

	cur.set("list sections")
	live, err := s.sectionRepo.ListNonDeleted(ctx)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}
	order := wikitree.NextOrderIndex(live, parentID)
	if req.ProposedOrderIndex != nil {
		order = *req.ProposedOrderIndex
	}

	cur.set("create section")
	section := &wiki.Section{
		Slug:       slug,
		Title:      deref(req.ProposedTitle),
		ParentID:   parentID,
		Depth:      wikitree.Depth(live, parentID),
		OrderIndex: order,
	}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return err
	}

	cur.set("create version")
	version := &wiki.Version{
		SectionID:       section.ID,
		Content:         deref(req.ProposedContent),
		CreatedBy:       req.RequestedBy,
		SourceRequestID: &req.ID,
	}
	if err := s.versionRepo.Create(ctx, version); err != nil {
		return err
	}

	result.Section = section
	result.Version = version
	return nil
}

func (s *approvalService) applyEdit(ctx context.Context, cur *step, req *wiki.EditRequest, result *wikiSvc.ApprovalResult) error {
	cur.set("load target")
	target, err := s.validator.ValidateSection(ctx, deref(req.SectionID))
	if err != nil {
		return err
	}

	cur.set("list sections")
	live, err := s.sectionRepo.ListNonDeleted(ctx)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}

	// The tree may have changed since submission: re-check the move
	cur.set("validate parent")
	parentID := req.ProposedParentID
	if parentID != nil {
		if err := s.validator.ValidateParent(ctx, parentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fieldError("parent_id", "proposed parent section no longer exists")
			}
			return err
		}
		if !wikitree.CanReparent(live, target.ID, parentID) {
			return fieldError("parent_id", "proposed parent is now inside this section's subtree")
		}
	}

	update := wiki.SectionUpdate{
		Title:      target.Title,
		Slug:       target.Slug,
		ParentID:   parentID,
		OrderIndex: target.OrderIndex,
		Depth:      wikitree.Depth(live, parentID),
		UpdatedAt:  s.now(),
	}
	if req.ProposedTitle != nil {
		update.Title = *req.ProposedTitle
	}
	if req.ProposedSlug != nil {
		update.Slug = *req.ProposedSlug
	}
	if req.ProposedOrderIndex != nil {
		update.OrderIndex = *req.ProposedOrderIndex
	}

	if update.Slug != target.Slug {
		cur.set("check slug")
		if err := s.validator.CheckSlugAvailable(ctx, update.Slug, target.ID); err != nil {
			return err
		}
	}

	cur.set("update section")
	if err := s.sectionRepo.Update(ctx, target.ID, update); err != nil {
		return err
	}

	cur.set("create version")
	version := &wiki.Version{
		SectionID:       target.ID,
		Content:         deref(req.ProposedContent),
		CreatedBy:       req.RequestedBy,
		SourceRequestID: &req.ID,
	}
	if err := s.versionRepo.Create(ctx, version); err != nil {
		return err
	}

	cur.set("reload section")
	section, err := s.sectionRepo.GetByID(ctx, target.ID)
	if err != nil {
		return err
	}

	result.Section = section
	result.Version = version
	return nil
}

// applyDelete walks the live tree at approval time. A target that is already
// deleted is a no-op, so repeating a delete is harmless.
func (s *approvalService) applyDelete(ctx context.Context, cur *step, req *wiki.EditRequest, result *wikiSvc.ApprovalResult) error {
	cur.set("load target")
	target, err := s.sectionRepo.GetByID(ctx, deref(req.SectionID))
	if err != nil {
		return err
	}

	cur.set("soft delete subtree")
	deleted, err := s.sectionRepo.SoftDeleteSubtree(ctx, target.ID)
	if err != nil {
		return err
	}

	result.DeletedIDs = deleted
	if len(deleted) > 0 {
		cur.set("reload section")
		if result.Section, err = s.sectionRepo.GetByID(ctx, target.ID); err != nil {
			return err
		}
	}
	return nil
}

// Reject marks a pending request rejected. Nothing else changes.
func (s *approvalService) Reject(ctx context.Context, reviewer models.Principal, id string, note *string) (*wiki.EditRequest, error) {
	if err := requireAdmin(reviewer); err != nil {
		return nil, err
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
		if req.Status != wiki.StatusPending {
			return alreadyResolved(req)
		}
		if err := s.requestRepo.UpdateStatus(txCtx, id, wiki.Resolution{
			Status:     wiki.StatusRejected,
			ReviewedBy: reviewer.UserID,
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

	s.logger.Info("edit request rejected", "id", id, "reviewed_by", reviewer.UserID)
	return updated, nil
}

func requireAdmin(p models.Principal) error {
	if p.UserID == "" {
		return &domain.UnauthorizedError{Message: "sign in to review requests"}
	}
	if !p.IsAdmin {
		return &domain.ForbiddenError{Message: "only administrators can review edit requests"}
	}
	return nil
}

func alreadyResolved(req *wiki.EditRequest) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("edit request %s is already %s", req.ID, req.Status),
		ResourceType: "edit_request",
		ResourceID:   req.ID,
	}
}

// asTransactionError passes domain errors through and wraps everything else.
// Either way the transaction was rolled back and the request is still pending.
func asTransactionError(id, op string, err error) error {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	return &domain.TransactionError{RequestID: id, Op: op, Err: err}
}

func sectionIDOf(r *wikiSvc.ApprovalResult) string {
	if r.Section != nil {
		return r.Section.ID
	}
	if r.Request != nil && r.Request.SectionID != nil {
		return *r.Request.SectionID
	}
	return ""
}
