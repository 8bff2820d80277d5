// Package pairgrouprepo persists pair groups. The partial unique index on open groups
// makes two transactions opening a group for the same queue conflict in storage.
package pairgrouprepo

import (
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/pairgroup"

	"github.com/google/uuid"
)

type PairGroupDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	HallID      string    `gorm:"uniqueIndex:idx_pair_groups_one_open,where:status = 1;not null"`
	WindowType  string    `gorm:"uniqueIndex:idx_pair_groups_one_open;not null"`
	TargetSize  int       `gorm:"not null"`
	FilledCount int       `gorm:"not null"`
	Status      int       `gorm:"not null"`
	Pin         string    `gorm:"type:varchar(6)"`
	CreatedAt   time.Time `gorm:"not null"`
	Version     int       `gorm:"not null"`
}

func (PairGroupDTO) TableName() string {
	return "pair_groups"
}

func fromDomain(g *pairgroup.PairGroup, version int) PairGroupDTO {
	s := g.Snapshot()
	return PairGroupDTO{
		ID:          s.ID.Bytes(),
		HallID:      s.HallID.String(),
		WindowType:  s.Window.String(),
		TargetSize:  s.TargetSize,
		FilledCount: s.FilledCount,
		Status:      int(s.Status),
		Pin:         s.Pin.String(),
		CreatedAt:   s.CreatedAt,
		Version:     version,
	}
}

func toDomain(dto PairGroupDTO) (*pairgroup.PairGroup, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return pairgroup.RestorePairGroup(pairgroup.Snapshot{
		ID:          id,
		HallID:      kernel.HallID(dto.HallID),
		Window:      kernel.WindowType(dto.WindowType),
		TargetSize:  dto.TargetSize,
		FilledCount: dto.FilledCount,
		Status:      pairgroup.Status(dto.Status),
		Pin:         kernel.PIN(dto.Pin),
		CreatedAt:   dto.CreatedAt.UTC(),
		Version:     dto.Version,
	})
}
