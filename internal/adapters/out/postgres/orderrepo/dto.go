// Package orderrepo persists Order documents, the canonical record of order status.
package orderrepo

import (
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is one row of the orders table. The (hall, window, status) index serves the
// waiting-queue scans of pooling and the queue snapshots.
type OrderDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BuyerID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	HallID            string     `gorm:"index:idx_orders_queue,priority:1;not null"`
	WindowType        string     `gorm:"index:idx_orders_queue,priority:2;not null"`
	Status            int        `gorm:"index:idx_orders_queue,priority:3;not null"`
	PriceCents        int64      `gorm:"not null"`
	CreatedAt         time.Time  `gorm:"not null"`
	PairGroupID       *uuid.UUID `gorm:"type:uuid;index"`
	PinCode           string     `gorm:"type:varchar(6)"`
	DeliveryRequestID *uuid.UUID `gorm:"type:uuid"`
	MeetPoint         string
	DasherID          *uuid.UUID `gorm:"type:uuid;index"`
	Version           int        `gorm:"not null"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order, version int) OrderDTO {
	s := o.Snapshot()
	return OrderDTO{
		ID:                s.ID.Bytes(),
		BuyerID:           s.BuyerID.Bytes(),
		HallID:            s.HallID.String(),
		WindowType:        s.Window.String(),
		Status:            int(s.Status),
		PriceCents:        s.PriceCents,
		CreatedAt:         s.CreatedAt,
		PairGroupID:       rawUUID(s.PairGroupID),
		PinCode:           s.PinCode.String(),
		DeliveryRequestID: rawUUID(s.DeliveryRequestID),
		MeetPoint:         s.MeetPoint,
		DasherID:          rawUUID(s.DasherID),
		Version:           version,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}
	groupID, err := domainUUID(dto.PairGroupID)
	if err != nil {
		return nil, err
	}
	requestID, err := domainUUID(dto.DeliveryRequestID)
	if err != nil {
		return nil, err
	}
	dasherID, err := domainUUID(dto.DasherID)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                id,
		BuyerID:           buyerID,
		HallID:            kernel.HallID(dto.HallID),
		Window:            kernel.WindowType(dto.WindowType),
		Status:            order.Status(dto.Status),
		PriceCents:        dto.PriceCents,
		CreatedAt:         dto.CreatedAt.UTC(),
		PairGroupID:       groupID,
		PinCode:           kernel.PIN(dto.PinCode),
		DeliveryRequestID: requestID,
		MeetPoint:         dto.MeetPoint,
		DasherID:          dasherID,
		Version:           dto.Version,
	})
}

func rawUUID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func domainUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
