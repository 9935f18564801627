package services

import (
	"context"

	"github.com/iota-uz/crm-sdk/pkg/composables"
)

// inTx runs fn inside a database transaction when a pool or transaction is
// attached to the context. Repositories that carry their own storage (no
// database on the context) run fn directly.
func inTx[T any](ctx context.Context, fn func(txCtx context.Context) (T, error)) (T, error) {
	if _, err := composables.UseTx(ctx); err != nil {
		return fn(ctx)
	}
	return composables.InTxResult(ctx, fn)
}
