package wiki

import (
	"log/slog"

	"agora/internal/domain/repositories"
	wikiRepo "agora/internal/domain/repositories/wiki"
	wikiSvc "agora/internal/domain/services/wiki"
)

// Services holds all wiki services
type Services struct {
	EditRequests wikiSvc.EditRequestService
	Approvals    wikiSvc.ApprovalService
	Reader       wikiSvc.ReaderService
}

// SetupServices wires the wiki services over one set of repositories.
// The validator is shared so every service applies the same soft-delete rules.
func SetupServices(
	sectionRepo wikiRepo.SectionRepository,
	versionRepo wikiRepo.VersionRepository,
	requestRepo wikiRepo.EditRequestRepository,
	txManager repositories.TransactionManager,
	locker repositories.Locker,
	logger *slog.Logger,
) *Services {
	validator := NewResourceValidator(sectionRepo)

	return &Services{
		EditRequests: NewEditRequestService(sectionRepo, versionRepo, requestRepo, txManager, validator, logger),
		Approvals:    NewApprovalService(sectionRepo, versionRepo, requestRepo, txManager, locker, validator, logger),
		Reader:       NewReaderService(sectionRepo, versionRepo, validator, logger),
	}
}
