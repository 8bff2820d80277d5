// Package hallrepo reads the dining-hall catalogue: base meal prices per window and
// per-hall platform fee overrides.
package hallrepo

import (
	"context"
	"errors"
	"fmt"

	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuPriceDTO struct {
	HallID     string          `gorm:"primaryKey"`
	WindowType string          `gorm:"primaryKey"`
	BasePrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (MenuPriceDTO) TableName() string {
	return "hall_menu_prices"
}

type FeeOverrideDTO struct {
	HallID      string          `gorm:"primaryKey"`
	PlatformFee decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (FeeOverrideDTO) TableName() string {
	return "hall_fee_overrides"
}

type GormHallRepository struct {
	db *gorm.DB
}

func NewGormHallRepository(db *gorm.DB) *GormHallRepository {
	return &GormHallRepository{db: db}
}

// BasePrice returns the full meal price in dollars for key.
func (r *GormHallRepository) BasePrice(ctx context.Context, key kernel.QueueKey) (decimal.Decimal, error) {
	var dto MenuPriceDTO
	err := r.db.WithContext(ctx).
		Take(&dto, "hall_id = ? AND window_type = ?", key.HallID.String(), key.WindowType.String()).Error
	if err != nil {
		return decimal.Zero, storage.NotFound(err, "menu price", key)
	}
	return dto.BasePrice, nil
}

// PlatformFeeOverride returns nil when the hall uses the default fee.
func (r *GormHallRepository) PlatformFeeOverride(ctx context.Context, hallID kernel.HallID) (*decimal.Decimal, error) {
	var dto FeeOverrideDTO
	err := r.db.WithContext(ctx).Take(&dto, "hall_id = ?", hallID.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.PlatformFee, nil
}

// SetBasePrice creates or replaces the catalogue price of key.
func (r *GormHallRepository) SetBasePrice(ctx context.Context, key kernel.QueueKey, price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("base price %s must be positive", price)
	}
	dto := MenuPriceDTO{HallID: key.HallID.String(), WindowType: key.WindowType.String(), BasePrice: price}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&dto).Error
}

// SetPlatformFeeOverride creates or replaces the fee of hallID.
func (r *GormHallRepository) SetPlatformFeeOverride(ctx context.Context, hallID kernel.HallID, fee decimal.Decimal) error {
	if fee.IsNegative() {
		return fmt.Errorf("platform fee %s must not be negative", fee)
	}
	dto := FeeOverrideDTO{HallID: hallID.String(), PlatformFee: fee}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&dto).Error
}
