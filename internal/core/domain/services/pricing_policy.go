package services

import (
	"fmt"

	"campusdash/internal/core/domain/model/pairgroup"
	"campusdash/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var serviceSurcharge = decimal.RequireFromString("0.50")

// PricingPolicy prices one buyer's share of a pooled meal:
// round((base / group size + 0.50) * 100) cents.
type PricingPolicy struct{}

func (PricingPolicy) PriceCents(base decimal.Decimal) (int64, error) {
	if !base.IsPositive() {
		return 0, errs.NewValueIsInvalidErrorWithCause("basePrice", fmt.Errorf("%s is not greater than 0", base))
	}
	share := base.Div(decimal.NewFromInt(pairgroup.TargetSize)).Add(serviceSurcharge)
	return share.Mul(centsPerDollar).Round(0).IntPart(), nil
}
