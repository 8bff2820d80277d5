package deliveryrequest

import (
	"time"

	"campusdash/internal/core/domain/model/kernel"
)

type Opened struct {
	RequestID  kernel.UUID   `json:"requestId"`
	OrderID    kernel.UUID   `json:"orderId"`
	HallID     kernel.HallID `json:"hallId"`
	Candidates []kernel.UUID `json:"candidateDasherIds"`
	ExpiresAt  time.Time     `json:"expiresAt"`
}

func (Opened) EventName() string { return "delivery_request.opened" }

type Accepted struct {
	RequestID kernel.UUID `json:"requestId"`
	OrderID   kernel.UUID `json:"orderId"`
	DasherID  kernel.UUID `json:"dasherId"`
}

func (Accepted) EventName() string { return "delivery_request.assigned" }

type Declined struct {
	RequestID kernel.UUID `json:"requestId"`
	DasherID  kernel.UUID `json:"dasherId"`
	Remaining int         `json:"remainingCandidates"`
}

func (Declined) EventName() string { return "delivery_request.declined" }

type ExpiredEvent struct {
	RequestID kernel.UUID `json:"requestId"`
	OrderID   kernel.UUID `json:"orderId"`
}

func (ExpiredEvent) EventName() string { return "delivery_request.expired" }

type CompletedEvent struct {
	RequestID kernel.UUID `json:"requestId"`
	OrderID   kernel.UUID `json:"orderId"`
	DasherID  kernel.UUID `json:"dasherId"`
}

func (CompletedEvent) EventName() string { return "delivery_request.completed" }
