package commands

import (
	"context"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/payment"
	"campusdash/internal/core/domain/model/run"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/pkg/errs"
)

// RunLifecycleHandler drives a run from claim to delivery. Every transition is applied
// to the run, to each canonical member order and to the member copies in one transaction.
type RunLifecycleHandler struct {
	runner     TxRunner
	calculator services.SettlementCalculator
	matcher    services.PinMatcher
}

func NewRunLifecycleHandler(runner TxRunner, calculator services.SettlementCalculator) RunLifecycleHandler {
	return RunLifecycleHandler{runner: runner, calculator: calculator}
}

func (h RunLifecycleHandler) HandleClaim(ctx context.Context, command ClaimRunCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		return transitionRun(ctx, uow, command.RunID(),
			func(r *run.Run, _ []*order.Order) error {
				return r.Claim(command.DasherID(), time.Now().UTC())
			},
			func(o *order.Order) error {
				return o.Claim(command.DasherID())
			},
		)
	})
}

func (h RunLifecycleHandler) HandlePickedUp(ctx context.Context, command MarkPickedUpCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		return transitionRun(ctx, uow, command.RunID(),
			func(r *run.Run, _ []*order.Order) error {
				return r.PickUp(command.DasherID(), time.Now().UTC())
			},
			(*order.Order).StartDelivery,
		)
	})
}

func (h RunLifecycleHandler) HandleCancel(ctx context.Context, command CancelRunCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		return transitionRun(ctx, uow, command.RunID(),
			func(r *run.Run, _ []*order.Order) error {
				if err := r.RequireDasher(command.DasherID(), "cancel"); err != nil {
					return err
				}
				if r.Status() != run.Claimed {
					return errs.NewFailedPreconditionError("run %s is %s, only claimed runs can be cancelled", r.ID(), r.Status())
				}
				return r.Cancel()
			},
			(*order.Order).CancelByDasher,
		)
	})
}

// HandleDelivered confirms the handoff and settles the run in the same transaction.
// A second call observes a delivered run and fails, so a run is settled at most once.
func (h RunLifecycleHandler) HandleDelivered(ctx context.Context, command MarkDeliveredCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		var settled *run.Run
		var members []*order.Order

		err := transitionRun(ctx, uow, command.RunID(),
			func(r *run.Run, orders []*order.Order) error {
				if err := r.Deliver(command.DasherID(), time.Now().UTC()); err != nil {
					return err
				}
				if err := h.matcher.Verify(orders, command.Pins()); err != nil {
					return err
				}
				settled, members = r, orders
				return nil
			},
			(*order.Order).MarkDelivered,
		)
		if err != nil {
			return err
		}

		return h.settle(ctx, uow, settled, members)
	})
}

func (h RunLifecycleHandler) settle(ctx context.Context, uow UoW, r *run.Run, members []*order.Order) error {
	fee, err := uow.HallRepository().PlatformFeeOverride(ctx, r.HallID())
	if err != nil {
		return err
	}

	prices := make([]int64, 0, len(members))
	buyers := make([]kernel.UUID, 0, len(members))
	for _, o := range members {
		prices = append(prices, o.PriceCents())
		buyers = append(buyers, o.BuyerID())
	}

	p, err := payment.NewCapturedPayment(
		kernel.NewUUID(),
		payment.RunSource(r.ID()),
		*r.DasherID(),
		buyers,
		h.calculator.Calculate(prices, fee),
		*r.DeliveredAt(),
	)
	if err != nil {
		return err
	}

	return uow.PaymentRepository().Add(ctx, p)
}

// transitionRun loads the run and its member orders, applies runStep then orderStep to every
// member, and writes everything back.
func transitionRun(
	ctx context.Context,
	uow UoW,
	runID kernel.UUID,
	runStep func(r *run.Run, orders []*order.Order) error,
	orderStep func(o *order.Order) error,
) error {
	runs := uow.RunRepository()
	orders := uow.OrderRepository()

	r, err := runs.Get(ctx, runID)
	if err != nil {
		return err
	}

	members, err := orders.GetMany(ctx, r.MemberOrderIDs())
	if err != nil {
		return err
	}

	if err = runStep(r, members); err != nil {
		return err
	}

	for _, o := range members {
		if err = orderStep(o); err != nil {
			return err
		}
		if err = r.SyncMember(o); err != nil {
			return err
		}
		if err = orders.Update(ctx, o); err != nil {
			return err
		}
	}

	return runs.Update(ctx, r)
}
