package services

import (
	"campusdash/internal/core/domain/model/payment"

	"github.com/shopspring/decimal"
)

var (
	processingFeeRate  = decimal.RequireFromString("0.029")
	processingFeeFixed = decimal.NewFromInt(30)
	centsPerDollar     = decimal.NewFromInt(100)
)

// SettlementCalculator computes the fees and payout of a completed run or request.
//
//	amount     = sum of member prices
//	processing = round(amount * 0.029) + 30
//	platform   = round(hall fee dollars * 100), default fee when the hall has no override
//	payout     = max(amount - platform - processing, 0)
type SettlementCalculator struct {
	defaultPlatformFee decimal.Decimal
}

// NewSettlementCalculator takes the platform fee in dollars applied to halls without an override.
func NewSettlementCalculator(defaultPlatformFee decimal.Decimal) SettlementCalculator {
	return SettlementCalculator{defaultPlatformFee: defaultPlatformFee}
}

// Calculate settles priceCents. hallFee is nil when the hall has no override.
func (c SettlementCalculator) Calculate(priceCents []int64, hallFee *decimal.Decimal) payment.Breakdown {
	var amount int64
	for _, p := range priceCents {
		amount += p
	}

	fee := c.defaultPlatformFee
	if hallFee != nil {
		fee = *hallFee
	}

	processing := decimal.NewFromInt(amount).Mul(processingFeeRate).Round(0).Add(processingFeeFixed)
	platform := fee.Mul(centsPerDollar).Round(0)

	return payment.Breakdown{
		AmountCents:        amount,
		PlatformFeeCents:   platform.IntPart(),
		ProcessingFeeCents: processing.IntPart(),
	}
}
