package pairgrouprepo

import (
	"context"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/pairgroup"

	"gorm.io/gorm"
)

type GormPairGroupRepository struct {
	db      *gorm.DB
	tracker storage.Tracker
}

func NewGormPairGroupRepository(db *gorm.DB, tracker storage.Tracker) *GormPairGroupRepository {
	return &GormPairGroupRepository{db: db, tracker: tracker}
}

// Add fails with errs.ErrConcurrentModification when the queue already has an open group.
func (r *GormPairGroupRepository) Add(ctx context.Context, aggregate *pairgroup.PairGroup) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, 1)
	if err := storage.Insert(ctx, r.db, &dto, "pair group", aggregate.ID()); err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	r.tracker.Track(aggregate)
	return nil
}

func (r *GormPairGroupRepository) Update(ctx context.Context, aggregate *pairgroup.PairGroup) error {
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

func (r *GormPairGroupRepository) Get(ctx context.Context, id kernel.UUID) (*pairgroup.PairGroup, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PairGroupDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, storage.NotFound(err, "pair group", id)
	}
	return toDomain(dto)
}

// FindOpen returns errs.ErrObjectNotFound when key has no open group.
func (r *GormPairGroupRepository) FindOpen(ctx context.Context, key kernel.QueueKey) (*pairgroup.PairGroup, error) {
	var dto PairGroupDTO
	err := r.db.WithContext(ctx).
		Where("hall_id = ? AND window_type = ? AND status = ?", key.HallID.String(), key.WindowType.String(), int(pairgroup.Open)).
		Take(&dto).Error
	if err != nil {
		return nil, storage.NotFound(err, "open pair group", key)
	}
	return toDomain(dto)
}
