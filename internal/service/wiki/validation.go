package wiki

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
	wikiRepo "agora/internal/domain/repositories/wiki"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ResourceValidator checks that referenced sections exist and are not soft-deleted
type ResourceValidator struct {
	sectionRepo wikiRepo.SectionRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(sectionRepo wikiRepo.SectionRepository) *ResourceValidator {
	return &ResourceValidator{sectionRepo: sectionRepo}
}

// ValidateSection returns the section if it exists and is live.
// Returns domain.ErrNotFound if the section is deleted or doesn't exist
func (v *ResourceValidator) ValidateSection(ctx context.Context, sectionID string) (*models.Section, error) {
	section, err := v.sectionRepo.GetByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if section.IsDeleted {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("section %s has been deleted", sectionID)}
	}
	return section, nil
}

// ValidateParent ensures a proposed parent is live.
// Returns nil for a nil parent (root is always valid)
func (v *ResourceValidator) ValidateParent(ctx context.Context, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if _, err := v.ValidateSection(ctx, *parentID); err != nil {
		return fmt.Errorf("invalid parent: %w", err)
	}
	return nil
}

// CheckSlugAvailable returns a ConflictError if a live section other than exceptID uses slug
func (v *ResourceValidator) CheckSlugAvailable(ctx context.Context, slug, exceptID string) error {
	existing, err := v.sectionRepo.GetBySlug(ctx, slug)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if existing.ID == exceptID {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("slug %q is already used by section %q", slug, existing.Title),
		ResourceType: "section",
		ResourceID:   existing.ID,
	}
}

// toValidationError converts ozzo-validation output into a domain.ValidationError
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fe := range fieldErrs {
			if fe != nil {
				fields[name] = fe.Error()
			}
		}
		return &domain.ValidationError{Message: err.Error(), Fields: fields}
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return &domain.ValidationError{Message: err.Error()}
}

func fieldError(field, message string) *domain.ValidationError {
	return &domain.ValidationError{
		Message: fmt.Sprintf("%s: %s", field, message),
		Fields:  map[string]string{field: message},
	}
}
