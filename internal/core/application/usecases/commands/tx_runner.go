package commands

import (
	"context"
	"errors"
	"time"

	"campusdash/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxRetries bounds the re-executions of a transaction that lost a write race.
const DefaultMaxRetries = 5

// TxRunner runs a transaction body until it commits or fails for a business reason.
//
// A body or commit failing with errs.ErrConcurrentModification is re-executed from
// scratch in a fresh unit of work, so the body must read everything it needs and
// re-check every precondition on each call. Any other error aborts immediately.
type TxRunner struct {
	factory    UoWFactory
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

func NewTxRunner(factory UoWFactory, maxRetries uint64) TxRunner {
	return TxRunner{
		factory:    factory,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 5 * time.Millisecond
			b.MaxInterval = 250 * time.Millisecond
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Run executes body inside a transaction.
func (r TxRunner) Run(ctx context.Context, body func(ctx context.Context, uow UoW) error) error {
	attempt := func() error {
		err := r.runOnce(ctx, body)
		if err == nil || errors.Is(err, errs.ErrConcurrentModification) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	return backoff.Retry(attempt, policy)
}

func (r TxRunner) runOnce(ctx context.Context, body func(ctx context.Context, uow UoW) error) error {
	uow := r.factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := body(ctx, uow); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
