package commands

import (
	"errors"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/guard"
)

var (
	ErrQueueOrderCommandIsNotConstructed = errors.New(
		"QueueOrderCommand must be created via NewQueueOrderCommand constructor",
	)
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
	)
)

// QueueOrderCommand seats an existing requested order of the caller in a pair group.
type QueueOrderCommand struct {
	orderID kernel.UUID
	buyerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewQueueOrderCommand(orderID, buyerID kernel.UUID) (QueueOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), buyerID.Validate()); err != nil {
		return QueueOrderCommand{}, err
	}
	return QueueOrderCommand{orderID: orderID, buyerID: buyerID, guard: guard.NewConstructorGuard()}, nil
}

func (c QueueOrderCommand) Validate() error {
	return c.guard.Validate(ErrQueueOrderCommandIsNotConstructed)
}

func (c QueueOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c QueueOrderCommand) BuyerID() kernel.UUID { return c.buyerID }

// CancelOrderCommand cancels an order of the caller that is still waiting in the queue.
type CancelOrderCommand struct {
	orderID kernel.UUID
	buyerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID, buyerID kernel.UUID) (CancelOrderCommand, error) {
	if err := errors.Join(orderID.Validate(), buyerID.Validate()); err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{orderID: orderID, buyerID: buyerID, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CancelOrderCommand) BuyerID() kernel.UUID { return c.buyerID }
