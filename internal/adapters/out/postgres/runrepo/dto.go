// Package runrepo persists runs together with the copies of their member orders.
package runrepo

import (
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/run"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RunDTO struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	HallID               string     `gorm:"index:idx_runs_board,priority:1;not null"`
	WindowType           string     `gorm:"not null"`
	PairGroupID          uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	Status               int        `gorm:"index:idx_runs_board,priority:2;not null"`
	DasherID             *uuid.UUID `gorm:"type:uuid;index"`
	EstimatedPayoutCents int64      `gorm:"not null"`
	DeliveryPin          string     `gorm:"type:varchar(6)"`
	CreatedAt            time.Time  `gorm:"not null"`
	ClaimedAt            *time.Time
	PickedUpAt           *time.Time
	DeliveredAt          *time.Time
	Members              datatypes.JSONSlice[run.Member] `gorm:"type:jsonb;not null"`
	Version              int                             `gorm:"not null"`
}

func (RunDTO) TableName() string {
	return "runs"
}

func fromDomain(r *run.Run, version int) RunDTO {
	s := r.Snapshot()

	var dasherID *uuid.UUID
	if s.DasherID != nil {
		raw := s.DasherID.Bytes()
		dasherID = &raw
	}

	return RunDTO{
		ID:                   s.ID.Bytes(),
		HallID:               s.HallID.String(),
		WindowType:           s.Window.String(),
		PairGroupID:          s.PairGroupID.Bytes(),
		Status:               int(s.Status),
		DasherID:             dasherID,
		EstimatedPayoutCents: s.EstimatedPayoutCents,
		DeliveryPin:          s.DeliveryPin.String(),
		CreatedAt:            s.CreatedAt,
		ClaimedAt:            s.ClaimedAt,
		PickedUpAt:           s.PickedUpAt,
		DeliveredAt:          s.DeliveredAt,
		Members:              datatypes.NewJSONSlice(s.Members),
		Version:              version,
	}
}

func toDomain(dto RunDTO) (*run.Run, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	groupID, err := kernel.UUIDFromBytes(dto.PairGroupID[:])
	if err != nil {
		return nil, err
	}

	var dasherID *kernel.UUID
	if dto.DasherID != nil {
		d, dErr := kernel.UUIDFromBytes(dto.DasherID[:])
		if dErr != nil {
			return nil, dErr
		}
		dasherID = &d
	}

	return run.RestoreRun(run.Snapshot{
		ID:                   id,
		HallID:               kernel.HallID(dto.HallID),
		Window:               kernel.WindowType(dto.WindowType),
		PairGroupID:          groupID,
		Status:               run.Status(dto.Status),
		DasherID:             dasherID,
		EstimatedPayoutCents: dto.EstimatedPayoutCents,
		DeliveryPin:          kernel.PIN(dto.DeliveryPin),
		CreatedAt:            dto.CreatedAt.UTC(),
		ClaimedAt:            utc(dto.ClaimedAt),
		PickedUpAt:           utc(dto.PickedUpAt),
		DeliveredAt:          utc(dto.DeliveredAt),
		Members:              dto.Members,
		Version:              dto.Version,
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
