package commands

import (
	"context"
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/pkg/errs"
)

// QueueOrderCommandHandler pools a requested order.
type QueueOrderCommandHandler struct {
	runner     TxRunner
	dispatcher services.PoolDispatcher
}

func NewQueueOrderCommandHandler(runner TxRunner, dispatcher services.PoolDispatcher) QueueOrderCommandHandler {
	return QueueOrderCommandHandler{runner: runner, dispatcher: dispatcher}
}

func (h QueueOrderCommandHandler) Handle(ctx context.Context, command QueueOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		o, err := loadOwnedOrder(ctx, uow, command.OrderID(), command.BuyerID(), "queue")
		if err != nil {
			return err
		}

		if err = poolOrder(ctx, uow, h.dispatcher, o, time.Now().UTC()); err != nil {
			return err
		}

		return uow.OrderRepository().Update(ctx, o)
	})
}

// CancelOrderCommandHandler cancels a waiting order. A pooled order gives its seat back
// to the group and a broadcast order withdraws its open delivery request.
type CancelOrderCommandHandler struct {
	runner TxRunner
}

func NewCancelOrderCommandHandler(runner TxRunner) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{runner: runner}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, command CancelOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		o, err := loadOwnedOrder(ctx, uow, command.OrderID(), command.BuyerID(), "cancel")
		if err != nil {
			return err
		}

		wasPooled := o.Status() == order.Pooled
		if err = o.CancelByBuyer(); err != nil {
			return err
		}

		if wasPooled {
			if err = leaveGroup(ctx, uow, *o.PairGroupID()); err != nil {
				return err
			}
		}

		if requestID := o.DeliveryRequestID(); requestID != nil {
			if err = withdrawRequest(ctx, uow, *requestID); err != nil {
				return err
			}
		}

		return uow.OrderRepository().Update(ctx, o)
	})
}

func loadOwnedOrder(ctx context.Context, uow UoW, orderID, buyerID kernel.UUID, action string) (*order.Order, error) {
	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(buyerID) {
		return nil, errs.NewPermissionDeniedError(action, "order "+orderID.String())
	}
	return o, nil
}

func leaveGroup(ctx context.Context, uow UoW, groupID kernel.UUID) error {
	groups := uow.PairGroupRepository()
	group, err := groups.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if err = group.Leave(); err != nil {
		return err
	}
	return groups.Update(ctx, group)
}

func withdrawRequest(ctx context.Context, uow UoW, requestID kernel.UUID) error {
	requests := uow.DeliveryRequestRepository()
	req, err := requests.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status() != deliveryrequest.Open {
		return errs.NewFailedPreconditionError("delivery request %s is already %s", requestID, req.Status())
	}
	if err = req.Withdraw(); err != nil {
		return err
	}
	return requests.Update(ctx, req)
}
