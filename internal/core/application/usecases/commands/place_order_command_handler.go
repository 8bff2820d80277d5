package commands

import (
	"context"
	"time"

	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/services"
)

// PlaceOrderCommandHandler prices and stores a new order, pooling it when asked.
type PlaceOrderCommandHandler struct {
	runner     TxRunner
	dispatcher services.PoolDispatcher
	pricing    services.PricingPolicy
}

func NewPlaceOrderCommandHandler(runner TxRunner, dispatcher services.PoolDispatcher) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		runner:     runner,
		dispatcher: dispatcher,
	}
}

func (h PlaceOrderCommandHandler) Handle(ctx context.Context, command PlaceOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		base, err := uow.HallRepository().BasePrice(ctx, command.QueueKey())
		if err != nil {
			return err
		}

		price, err := h.pricing.PriceCents(base)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		o, err := order.NewOrder(
			command.OrderID(),
			command.BuyerID(),
			command.QueueKey().HallID,
			command.QueueKey().WindowType,
			price,
			now,
		)
		if err != nil {
			return err
		}

		if command.Pool() {
			if err = poolOrder(ctx, uow, h.dispatcher, o, now); err != nil {
				return err
			}
		}

		return uow.OrderRepository().Add(ctx, o)
	})
}
