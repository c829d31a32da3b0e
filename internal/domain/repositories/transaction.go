package repositories

import "context"

// TxFn runs inside a transaction. The ctx it receives carries the open
// transaction, so repository calls made through it join atomically.
type TxFn func(ctx context.Context) error

// TransactionManager brackets multi-step mutations: delete cascades,
// share propagation and registry pairing all run under one ExecTx so a
// failure rolls back every side effect.
type TransactionManager interface {
	// ExecTx runs fn in a transaction, committing on nil and rolling
	// back on error.
	ExecTx(ctx context.Context, fn TxFn) error
}
