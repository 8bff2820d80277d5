package runrepo

import (
	"context"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/run"

	"gorm.io/gorm"
)

type GormRunRepository struct {
	db      *gorm.DB
	tracker storage.Tracker
}

func NewGormRunRepository(db *gorm.DB, tracker storage.Tracker) *GormRunRepository {
	return &GormRunRepository{db: db, tracker: tracker}
}

// Add inserts a run. A second run for the same pair group is a write conflict.
func (r *GormRunRepository) Add(ctx context.Context, aggregate *run.Run) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, 1)
	if err := storage.Insert(ctx, r.db, &dto, "run", aggregate.ID()); err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	r.tracker.Track(aggregate)
	return nil
}

// Update is the compare-and-set every run transition relies on, the claim race included.
func (r *GormRunRepository) Update(ctx context.Context, aggregate *run.Run) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, aggregate.Version()+1)
	if err := storage.UpdateVersioned(ctx, r.db, &dto, dto.ID, aggregate.Version()); err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	r.tracker.Track(aggregate)
	return nil
}

func (r *GormRunRepository) Get(ctx context.Context, id kernel.UUID) (*run.Run, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RunDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, storage.NotFound(err, "run", id)
	}
	return toDomain(dto)
}
