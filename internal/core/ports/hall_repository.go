package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// HallRepository is the read-only hall catalogue: meal base prices and fee overrides.
type HallRepository interface {
	// BasePrice returns the dollar price of a meal in key, or errs.ErrObjectNotFound.
	BasePrice(ctx context.Context, key kernel.QueueKey) (decimal.Decimal, error)

	// PlatformFeeOverride returns the hall's platform fee in dollars, or nil when the
	// default applies.
	PlatformFeeOverride(ctx context.Context, hallID kernel.HallID) (*decimal.Decimal, error)
}
