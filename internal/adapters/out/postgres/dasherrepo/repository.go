// Package dasherrepo stores the courier online flags mirrored from the courier directory.
package dasherrepo

import (
	"context"
	"time"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/dasher"
	"campusdash/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityDTO struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Online    bool      `gorm:"index;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null"`
	Version   int       `gorm:"not null"`
}

func (AvailabilityDTO) TableName() string {
	return "dasher_availability"
}

type GormAvailabilityRepository struct {
	db *gorm.DB
}

func NewGormAvailabilityRepository(db *gorm.DB) *GormAvailabilityRepository {
	return &GormAvailabilityRepository{db: db}
}

// Save inserts a flag never stored before and version-checks every later write.
func (r *GormAvailabilityRepository) Save(ctx context.Context, aggregate *dasher.Availability) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	current := aggregate.Version()
	dto := AvailabilityDTO{
		ID:        aggregate.DasherID().Bytes(),
		Online:    aggregate.IsOnline(),
		UpdatedAt: aggregate.UpdatedAt(),
		Version:   current + 1,
	}

	var err error
	if current == 0 {
		err = storage.InsertFirst(ctx, r.db, &dto)
	} else {
		err = storage.UpdateVersioned(ctx, r.db, &dto, dto.ID, current)
	}
	if err != nil {
		return err
	}

	aggregate.AdvanceVersion()
	return nil
}

func (r *GormAvailabilityRepository) Get(ctx context.Context, dasherID kernel.UUID) (*dasher.Availability, error) {
	if err := dasherID.Validate(); err != nil {
		return nil, err
	}

	var dto AvailabilityDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", dasherID.Bytes()).Error; err != nil {
		return nil, storage.NotFound(err, "dasher", dasherID)
	}
	return dasher.RestoreAvailability(dasherID, dto.Online, dto.UpdatedAt.UTC(), dto.Version)
}

func (r *GormAvailabilityRepository) ListOnline(ctx context.Context) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&AvailabilityDTO{}).
		Where("online").
		Order("id").
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
