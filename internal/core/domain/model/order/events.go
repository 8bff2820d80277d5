package order

import "campusdash/internal/core/domain/model/kernel"

// Placed is recorded when a buyer submits a new order.
type Placed struct {
	OrderID    kernel.UUID       `json:"orderId"`
	BuyerID    kernel.UUID       `json:"buyerId"`
	HallID     kernel.HallID     `json:"hallId"`
	Window     kernel.WindowType `json:"windowType"`
	PriceCents int64             `json:"priceCents"`
}

func (Placed) EventName() string { return "order.placed" }

func (e Placed) QueueKey() kernel.QueueKey {
	return kernel.QueueKey{HallID: e.HallID, WindowType: e.Window}
}

// StatusChanged is recorded on every status transition.
type StatusChanged struct {
	OrderID kernel.UUID       `json:"orderId"`
	BuyerID kernel.UUID       `json:"buyerId"`
	HallID  kernel.HallID     `json:"hallId"`
	Window  kernel.WindowType `json:"windowType"`
	From    Status            `json:"from"`
	To      Status            `json:"to"`
}

func (StatusChanged) EventName() string { return "order.status_changed" }

// QueueKey lets subscribers refresh the affected queue snapshot.
func (e StatusChanged) QueueKey() kernel.QueueKey {
	return kernel.QueueKey{HallID: e.HallID, WindowType: e.Window}
}

// DasherAssigned is recorded when a broadcast request is accepted for the order.
type DasherAssigned struct {
	OrderID   kernel.UUID `json:"orderId"`
	RequestID kernel.UUID `json:"requestId"`
	DasherID  kernel.UUID `json:"dasherId"`
}

func (DasherAssigned) EventName() string { return "order.dasher_assigned" }
