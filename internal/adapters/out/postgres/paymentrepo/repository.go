package paymentrepo

import (
	"context"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/payment"

	"gorm.io/gorm"
)

type GormPaymentRepository struct {
	db      *gorm.DB
	tracker storage.Tracker
}

func NewGormPaymentRepository(db *gorm.DB, tracker storage.Tracker) *GormPaymentRepository {
	return &GormPaymentRepository{db: db, tracker: tracker}
}

// Add fails with errs.ErrConcurrentModification when the source is already settled.
func (r *GormPaymentRepository) Add(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, 1)
	if err := storage.Insert(ctx, r.db, &dto, "payment", aggregate.ID()); err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	r.tracker.Track(aggregate)
	return nil
}

func (r *GormPaymentRepository) Update(ctx context.Context, aggregate *payment.Payment) error {
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

func (r *GormPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PaymentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, storage.NotFound(err, "payment", id)
	}
	return toDomain(dto)
}

func (r *GormPaymentRepository) FindBySource(ctx context.Context, source payment.Source) (*payment.Payment, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}

	var dto PaymentDTO
	err := r.db.WithContext(ctx).
		Take(&dto, "source_kind = ? AND source_id = ?", string(source.Kind), source.ID.Bytes()).Error
	if err != nil {
		return nil, storage.NotFound(err, "payment for "+string(source.Kind), source.ID)
	}
	return toDomain(dto)
}
