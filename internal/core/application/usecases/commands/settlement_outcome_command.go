package commands

import (
	"context"
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/payment"
	"campusdash/internal/core/domain/model/run"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var ErrRecordSettlementOutcomeCommandIsNotConstructed = errors.New(
	"RecordSettlementOutcomeCommand must be created via NewRecordSettlementOutcomeCommand constructor",
)

// RecordSettlementOutcomeCommand is the payment processor's verdict on a captured payment.
type RecordSettlementOutcomeCommand struct {
	paymentID kernel.UUID
	succeeded bool
	reason    string

	guard guard.ConstructorGuard
}

func NewRecordSettlementOutcomeCommand(paymentID kernel.UUID, succeeded bool, reason string) (RecordSettlementOutcomeCommand, error) {
	if err := paymentID.Validate(); err != nil {
		return RecordSettlementOutcomeCommand{}, err
	}
	if !succeeded && reason == "" {
		reason = "declined by processor"
	}
	return RecordSettlementOutcomeCommand{
		paymentID: paymentID,
		succeeded: succeeded,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RecordSettlementOutcomeCommand) Validate() error {
	return c.guard.Validate(ErrRecordSettlementOutcomeCommandIsNotConstructed)
}

func (c RecordSettlementOutcomeCommand) PaymentID() kernel.UUID { return c.paymentID }
func (c RecordSettlementOutcomeCommand) Succeeded() bool        { return c.succeeded }
func (c RecordSettlementOutcomeCommand) Reason() string         { return c.reason }

// RecordSettlementOutcomeCommandHandler closes out a settled run or request, or marks its
// payment cancelled. The run or order stays delivered on failure.
type RecordSettlementOutcomeCommandHandler struct {
	runner TxRunner
}

func NewRecordSettlementOutcomeCommandHandler(runner TxRunner) RecordSettlementOutcomeCommandHandler {
	return RecordSettlementOutcomeCommandHandler{runner: runner}
}

func (h RecordSettlementOutcomeCommandHandler) Handle(ctx context.Context, command RecordSettlementOutcomeCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		payments := uow.PaymentRepository()

		p, err := payments.Get(ctx, command.PaymentID())
		if err != nil {
			return err
		}

		if !command.Succeeded() {
			if err = p.Fail(command.Reason()); err != nil {
				return err
			}
			return payments.Update(ctx, p)
		}

		if err = p.ConfirmSettled(time.Now().UTC()); err != nil {
			return err
		}

		switch src := p.Source(); src.Kind {
		case payment.FromRun:
			err = transitionRun(ctx, uow, src.ID,
				func(r *run.Run, _ []*order.Order) error {
					if err := r.MarkPaid(); err != nil {
						return err
					}
					return r.Close()
				},
				payOrder,
			)
		case payment.FromDeliveryRequest:
			err = payRequestOrder(ctx, uow, src.ID)
		default:
			err = errs.NewValueIsInvalidError("payment source")
		}
		if err != nil {
			return err
		}

		return payments.Update(ctx, p)
	})
}

func payOrder(o *order.Order) error {
	if err := o.MarkPaid(); err != nil {
		return err
	}
	return o.Close()
}

func payRequestOrder(ctx context.Context, uow UoW, requestID kernel.UUID) error {
	req, err := uow.DeliveryRequestRepository().Get(ctx, requestID)
	if err != nil {
		return err
	}

	orders := uow.OrderRepository()
	o, err := orders.Get(ctx, req.OrderID())
	if err != nil {
		return err
	}
	if err = payOrder(o); err != nil {
		return err
	}
	return orders.Update(ctx, o)
}
