package repositories

import "context"

// TxFn runs inside a transaction. Repositories called with the ctx it
// receives join that transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a TxFn atomically: if it returns an error, every
// write made through its ctx is undone. A nested ExecTx joins the outer one.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

// ReleaseFunc releases a lock obtained from a Locker.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes critical sections across callers (and processes, for
// distributed implementations). Acquire blocks until the lock is held or ctx is done.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}
