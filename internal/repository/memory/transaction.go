package memory

import (
	"context"

	"agora/internal/domain/repositories"
)

type journalKey struct{}

// journal collects undo steps for writes made inside a transaction
type journal struct {
	undo []func()
}

func journalFrom(ctx context.Context) *journal {
	j, _ := ctx.Value(journalKey{}).(*journal)
	return j
}

// record registers an undo step. Must be called with store.mu held.
func record(ctx context.Context, undo func()) {
	if j := journalFrom(ctx); j != nil {
		j.undo = append(j.undo, undo)
	}
}

type txManager struct {
	store *Store
}

// ExecTx runs fn with a journal in the context. Transactions are serialized;
// a nested call joins the outer transaction.
func (tm *txManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if journalFrom(ctx) != nil {
		return fn(ctx)
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	j := &journal{}
	txCtx := context.WithValue(ctx, journalKey{}, j)

	if err := fn(txCtx); err != nil {
		tm.store.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		tm.store.mu.Unlock()
		return err
	}
	return nil
}
