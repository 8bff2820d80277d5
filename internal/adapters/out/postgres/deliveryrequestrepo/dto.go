// Package deliveryrequestrepo persists broadcast delivery requests.
package deliveryrequestrepo

import (
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// DeliveryRequestDTO keeps candidate couriers in a text[] column and the requested
// items as JSON. The (status, expires_at) index serves the expiry sweep.
type DeliveryRequestDTO struct {
	ID               uuid.UUID                                 `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID                                 `gorm:"type:uuid;index;not null"`
	BuyerID          uuid.UUID                                 `gorm:"type:uuid;not null"`
	HallID           string                                    `gorm:"not null"`
	WindowType       string                                    `gorm:"not null"`
	Status           int                                       `gorm:"index:idx_delivery_requests_due,priority:1;not null"`
	RequestedAt      time.Time                                 `gorm:"not null"`
	ExpiresAt        time.Time                                 `gorm:"index:idx_delivery_requests_due,priority:2;not null"`
	Candidates       pq.StringArray                            `gorm:"type:text[];not null"`
	AssignedDasherID *uuid.UUID                                `gorm:"type:uuid"`
	Items            datatypes.JSONSlice[deliveryrequest.Item] `gorm:"type:jsonb;not null"`
	MeetPoint        string                                    `gorm:"not null"`
	Instructions     string
	Version          int `gorm:"not null"`
}

func (DeliveryRequestDTO) TableName() string {
	return "delivery_requests"
}

func fromDomain(r *deliveryrequest.DeliveryRequest, version int) DeliveryRequestDTO {
	s := r.Snapshot()

	candidates := make(pq.StringArray, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		candidates = append(candidates, c.String())
	}

	var assigned *uuid.UUID
	if s.AssignedDasherID != nil {
		raw := s.AssignedDasherID.Bytes()
		assigned = &raw
	}

	return DeliveryRequestDTO{
		ID:               s.ID.Bytes(),
		OrderID:          s.OrderID.Bytes(),
		BuyerID:          s.BuyerID.Bytes(),
		HallID:           s.HallID.String(),
		WindowType:       s.Window.String(),
		Status:           int(s.Status),
		RequestedAt:      s.RequestedAt,
		ExpiresAt:        s.ExpiresAt,
		Candidates:       candidates,
		AssignedDasherID: assigned,
		Items:            datatypes.NewJSONSlice(s.Items),
		MeetPoint:        s.MeetPoint,
		Instructions:     s.Instructions,
		Version:          version,
	}
}

func toDomain(dto DeliveryRequestDTO) (*deliveryrequest.DeliveryRequest, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	candidates := make([]kernel.UUID, 0, len(dto.Candidates))
	for _, raw := range dto.Candidates {
		c, cErr := kernel.UUIDFromString(raw)
		if cErr != nil {
			return nil, cErr
		}
		candidates = append(candidates, c)
	}

	var assigned *kernel.UUID
	if dto.AssignedDasherID != nil {
		a, aErr := kernel.UUIDFromBytes(dto.AssignedDasherID[:])
		if aErr != nil {
			return nil, aErr
		}
		assigned = &a
	}

	return deliveryrequest.RestoreDeliveryRequest(deliveryrequest.Snapshot{
		ID:               id,
		OrderID:          orderID,
		BuyerID:          buyerID,
		HallID:           kernel.HallID(dto.HallID),
		Window:           kernel.WindowType(dto.WindowType),
		Status:           deliveryrequest.Status(dto.Status),
		RequestedAt:      dto.RequestedAt.UTC(),
		ExpiresAt:        dto.ExpiresAt.UTC(),
		Candidates:       candidates,
		AssignedDasherID: assigned,
		Items:            dto.Items,
		MeetPoint:        dto.MeetPoint,
		Instructions:     dto.Instructions,
		Version:          dto.Version,
	})
}
