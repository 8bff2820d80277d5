package commands

import (
	"errors"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand creates a buyer order priced from the hall catalogue.
// With pool set the order is seated in a pair group in the same transaction.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(kernel.NewUUID(), buyerID, "worcester", kernel.Lunch, true)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	buyerID kernel.UUID
	hallID  kernel.HallID
	window  kernel.WindowType
	pool    bool

	guard guard.ConstructorGuard
}

func NewPlaceOrderCommand(
	orderID, buyerID kernel.UUID,
	hallID string,
	window kernel.WindowType,
	pool bool,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		pool:  pool,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setBuyerID(buyerID),
		cmd.setHallID(hallID),
		window.Validate(),
	); err != nil {
		return PlaceOrderCommand{}, err
	}
	cmd.window = window

	return cmd, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c PlaceOrderCommand) BuyerID() kernel.UUID { return c.buyerID }
func (c PlaceOrderCommand) QueueKey() kernel.QueueKey {
	return kernel.QueueKey{HallID: c.hallID, WindowType: c.window}
}
func (c PlaceOrderCommand) Pool() bool { return c.pool }

func (c *PlaceOrderCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *PlaceOrderCommand) setBuyerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.buyerID = id
	return nil
}

func (c *PlaceOrderCommand) setHallID(hallID string) error {
	h, err := kernel.NewHallID(hallID)
	if err != nil {
		return err
	}
	c.hallID = h
	return nil
}
