package queries

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order on behalf of its buyer or its assigned courier.
// The handoff PIN is only returned to the buyer.
type GetOrderQuery struct {
	orderID  kernel.UUID
	callerID kernel.UUID
	guard    guard.ConstructorGuard
}

func NewGetOrderQuery(orderID, callerID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(orderID.Validate(), callerID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, callerID: callerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID  { return q.orderID }
func (q GetOrderQuery) CallerID() kernel.UUID { return q.callerID }

type OrderView struct {
	ID                kernel.UUID
	BuyerID           kernel.UUID
	HallID            kernel.HallID
	WindowType        kernel.WindowType
	Status            order.Status
	PriceCents        int64
	CreatedAt         time.Time
	PairGroupID       *kernel.UUID
	DeliveryRequestID *kernel.UUID
	DasherID          *kernel.UUID
	MeetPoint         string
	PinCode           kernel.PIN
}
