package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/pairgroup"
)

// PairGroupRepository persists pair groups. Storage allows at most one Open group
// per queue key, so two transactions opening a group for the same key cannot both commit.
type PairGroupRepository interface {
	Add(ctx context.Context, aggregate *pairgroup.PairGroup) error
	Update(ctx context.Context, aggregate *pairgroup.PairGroup) error
	Get(ctx context.Context, id kernel.UUID) (*pairgroup.PairGroup, error)

	// FindOpen returns errs.ErrObjectNotFound when key has no open group.
	FindOpen(ctx context.Context, key kernel.QueueKey) (*pairgroup.PairGroup, error)
}
