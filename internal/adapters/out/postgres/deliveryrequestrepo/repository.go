package deliveryrequestrepo

import (
	"context"
	"time"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormDeliveryRequestRepository struct {
	db      *gorm.DB
	tracker storage.Tracker
}

func NewGormDeliveryRequestRepository(db *gorm.DB, tracker storage.Tracker) *GormDeliveryRequestRepository {
	return &GormDeliveryRequestRepository{db: db, tracker: tracker}
}

func (r *GormDeliveryRequestRepository) Add(ctx context.Context, aggregate *deliveryrequest.DeliveryRequest) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, 1)
	if err := storage.Insert(ctx, r.db, &dto, "delivery request", aggregate.ID()); err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	r.tracker.Track(aggregate)
	return nil
}

// Update is version-checked, so of two accepts only the first to commit is kept.
func (r *GormDeliveryRequestRepository) Update(ctx context.Context, aggregate *deliveryrequest.DeliveryRequest) error {
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

func (r *GormDeliveryRequestRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryrequest.DeliveryRequest, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryRequestDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, storage.NotFound(err, "delivery request", id)
	}
	return toDomain(dto)
}

// ListDueIDs returns up to limit open requests whose expiry is not after now, oldest first.
func (r *GormDeliveryRequestRepository) ListDueIDs(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&DeliveryRequestDTO{}).
		Where("status = ? AND expires_at <= ?", int(deliveryrequest.Open), now).
		Order("expires_at").
		Limit(limit).
		Pluck("id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		kid, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, kid)
	}
	return ids, nil
}
