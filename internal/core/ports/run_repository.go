package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/run"
)

type RunRepository interface {
	Add(ctx context.Context, aggregate *run.Run) error
	Update(ctx context.Context, aggregate *run.Run) error
	Get(ctx context.Context, id kernel.UUID) (*run.Run, error)
}
