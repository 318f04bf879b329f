package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockerExcludes(t *testing.T) {
	l := NewLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Acquire = %v, want deadline exceeded", err)
	}

	if _, err := l.Acquire(ctx, "other"); err != nil {
		t.Errorf("independent key blocked: %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	// double release is harmless
	_ = release(ctx)

	again, err := l.Acquire(ctx, "k")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = again(ctx)
}
