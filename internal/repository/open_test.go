package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"agora/internal/config"
	"agora/internal/repository/memory"
	"agora/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenWithoutDatabaseUsesMemory(t *testing.T) {
	stores, err := Open(context.Background(), &config.Config{Environment: "test"}, discardLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer stores.Close()

	if stores.Pool != nil {
		t.Error("expected no pool for the memory backend")
	}
	sections, err := stores.Sections.ListNonDeleted(context.Background())
	if err != nil || len(sections) != 0 {
		t.Errorf("fresh store: %v, %v", sections, err)
	}
}

func TestOpenLocker(t *testing.T) {
	t.Run("memory when redis unset", func(t *testing.T) {
		locker, closeFn, err := OpenLocker(&config.Config{}, discardLogger())
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer closeFn()
		if _, ok := locker.(*memory.Locker); !ok {
			t.Errorf("got %T, want *memory.Locker", locker)
		}
	})

	t.Run("redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), ApprovalLockTTL: time.Second}

		locker, closeFn, err := OpenLocker(cfg, discardLogger())
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer closeFn()
		if _, ok := locker.(*redis.ApprovalLock); !ok {
			t.Errorf("got %T, want *redis.ApprovalLock", locker)
		}

		release, err := locker.Acquire(context.Background(), "wiki:approvals")
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		if err := release(context.Background()); err != nil {
			t.Errorf("release: %v", err)
		}
	})

	t.Run("bad redis url", func(t *testing.T) {
		if _, _, err := OpenLocker(&config.Config{RedisURL: "://nope"}, discardLogger()); err == nil {
			t.Error("expected error for malformed REDIS_URL")
		}
	})
}
