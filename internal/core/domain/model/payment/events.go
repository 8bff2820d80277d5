package payment

import "campusdash/internal/core/domain/model/kernel"

type CapturedEvent struct {
	PaymentID   kernel.UUID   `json:"paymentId"`
	Source      Source        `json:"source"`
	DasherID    kernel.UUID   `json:"dasherId"`
	BuyerIDs    []kernel.UUID `json:"buyerIds"`
	AmountCents int64         `json:"amountCents"`
	FeeCents    int64         `json:"feeCents"`
	PayoutCents int64         `json:"payoutCents"`
}

func (CapturedEvent) EventName() string { return "settlement.captured" }

type SettledEvent struct {
	PaymentID kernel.UUID `json:"paymentId"`
	Source    Source      `json:"source"`
}

func (SettledEvent) EventName() string { return "settlement.settled" }

type FailedEvent struct {
	PaymentID kernel.UUID `json:"paymentId"`
	Source    Source      `json:"source"`
	Reason    string      `json:"reason,omitempty"`
}

func (FailedEvent) EventName() string { return "settlement.failed" }
