package wiki

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"agora/internal/domain"
	models "agora/internal/domain/models/wiki"
	"agora/internal/repository/postgres"
)

// ============================================================================
// INTEGRATION TESTS - require TEST_DATABASE_URL, skipped otherwise
// ============================================================================

const testSchema = "test_wiki_repo"

func setupRepos(t *testing.T) (*postgres.RepositoryConfig, func()) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := postgres.CreateConnectionPool(ctx, dbURL, testSchema)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := postgres.MigrateUp(ctx, pool, testSchema, logger); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}

	cfg := &postgres.RepositoryConfig{Pool: pool, Tables: postgres.NewTableNames(), Logger: logger}
	return cfg, func() {
		if err := postgres.MigrateDown(ctx, pool, testSchema, 0, logger); err != nil {
			t.Logf("migrate down: %v", err)
		}
		pool.Close()
	}
}

func TestPostgresRepositories(t *testing.T) {
	cfg, cleanup := setupRepos(t)
	defer cleanup()

	ctx := context.Background()
	sections := NewSectionRepository(cfg)
	versions := NewVersionRepository(cfg)
	requests := NewEditRequestRepository(cfg)
	txm := postgres.NewTransactionManager(cfg.Pool, cfg.Logger)

	root := &models.Section{Slug: "intro", Title: "Intro"}
	if err := sections.Create(ctx, root); err != nil {
		t.Fatalf("create root: %v", err)
	}
	child := &models.Section{Slug: "details", Title: "Details", ParentID: &root.ID, Depth: 1}
	if err := sections.Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}

	t.Run("duplicate live slug conflicts", func(t *testing.T) {
		err := sections.Create(ctx, &models.Section{Slug: "intro", Title: "Again"})
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if conflict.ResourceID != root.ID {
			t.Errorf("conflict resource = %s, want %s", conflict.ResourceID, root.ID)
		}
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		if _, err := sections.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("latest version wins by creation order", func(t *testing.T) {
		first := &models.Version{SectionID: root.ID, Content: "one", CreatedBy: "u1"}
		second := &models.Version{SectionID: root.ID, Content: "two", CreatedBy: "u1"}
		for _, v := range []*models.Version{first, second} {
			if err := versions.Create(ctx, v); err != nil {
				t.Fatalf("create version: %v", err)
			}
		}

		latest, err := versions.GetLatestForSection(ctx, root.ID)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if latest.ID != second.ID {
			t.Errorf("latest = %s, want %s", latest.ID, second.ID)
		}

		none, err := versions.GetLatestForSection(ctx, child.ID)
		if err != nil || none != nil {
			t.Errorf("expected nil, nil for section without versions, got %v, %v", none, err)
		}
	})

	t.Run("status update is compare and set", func(t *testing.T) {
		title := "New"
		req := &models.EditRequest{Kind: models.KindAddSection, ProposedTitle: &title, RequestedBy: "u1"}
		if err := requests.Create(ctx, req); err != nil {
			t.Fatalf("create request: %v", err)
		}

		res := models.Resolution{Status: models.StatusRejected, ReviewedBy: "admin", ReviewedAt: time.Now()}
		err := txm.ExecTx(ctx, func(txCtx context.Context) error {
			if _, err := requests.GetForReview(txCtx, req.ID); err != nil {
				return err
			}
			return requests.UpdateStatus(txCtx, req.ID, res)
		})
		if err != nil {
			t.Fatalf("reject: %v", err)
		}

		if err := requests.UpdateStatus(ctx, req.ID, res); !errors.Is(err, domain.ErrConflict) {
			t.Errorf("second update: expected ErrConflict, got %v", err)
		}
	})

	t.Run("subtree soft delete frees slugs", func(t *testing.T) {
		ids, err := sections.SoftDeleteSubtree(ctx, root.ID)
		if err != nil {
			t.Fatalf("soft delete: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("deleted %d sections, want 2", len(ids))
		}

		again, err := sections.SoftDeleteSubtree(ctx, root.ID)
		if err != nil || len(again) != 0 {
			t.Errorf("repeat delete: got %v, %v", again, err)
		}

		if err := sections.Create(ctx, &models.Section{Slug: "intro", Title: "Reborn"}); err != nil {
			t.Errorf("slug should be reusable after delete: %v", err)
		}
	})
}
