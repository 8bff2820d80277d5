package orderrepo

import (
	"context"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker storage.Tracker
}

func NewGormOrderRepository(db *gorm.DB, tracker storage.Tracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new order at version 1.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, 1)
	if err := storage.Insert(ctx, r.db, &dto, "order", aggregate.ID()); err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	r.tracker.Track(aggregate)
	return nil
}

// Update writes the order if nobody else wrote it since it was read.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
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

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		return nil, storage.NotFound(err, "order", id)
	}

	return toDomain(dto)
}

// GetMany keeps the order of ids.
func (r *GormOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		raw = append(raw, id.Bytes())
	}

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Find(&dtos, "id IN ?", raw).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]OrderDTO, len(dtos))
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}

	orders := make([]*order.Order, 0, len(ids))
	for i, id := range ids {
		dto, ok := byID[raw[i]]
		if !ok {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *GormOrderRepository) ListByPairGroup(ctx context.Context, groupID kernel.UUID) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Order("created_at, id").
		Find(&dtos, "pair_group_id = ?", groupID.Bytes()).Error
	if err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

// ListWaiting returns the Requested and Pooled orders of key, oldest first.
func (r *GormOrderRepository) ListWaiting(ctx context.Context, key kernel.QueueKey) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("hall_id = ? AND window_type = ? AND status IN ?",
			key.HallID.String(), key.WindowType.String(), []int{int(order.Requested), int(order.Pooled)}).
		Order("created_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
