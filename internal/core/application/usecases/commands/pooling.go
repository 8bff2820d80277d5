package commands

import (
	"context"
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/pairgroup"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/pkg/errs"
)

// poolOrder seats o in the open group of its queue key, opening one when none exists.
// It writes the group, the other members and the run; persisting o is left to the caller.
//
// Two transactions opening a group for the same key, or taking the last seat of the same
// group, conflict in storage and the loser is retried against the committed state.
func poolOrder(
	ctx context.Context,
	uow UoW,
	dispatcher services.PoolDispatcher,
	o *order.Order,
	now time.Time,
) error {
	groups := uow.PairGroupRepository()
	orders := uow.OrderRepository()

	group, err := groups.FindOpen(ctx, o.QueueKey())
	isNew := errors.Is(err, errs.ErrObjectNotFound)
	switch {
	case isNew:
		group, err = pairgroup.NewPairGroup(kernel.NewUUID(), o.QueueKey(), now)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}

	var waiting []*order.Order
	if !isNew {
		if waiting, err = orders.ListByPairGroup(ctx, group.ID()); err != nil {
			return err
		}
	}

	createdRun, err := dispatcher.Pool(o, group, waiting, kernel.NewUUID(), now)
	if err != nil {
		return err
	}

	if isNew {
		err = groups.Add(ctx, group)
	} else {
		err = groups.Update(ctx, group)
	}
	if err != nil {
		return err
	}

	if createdRun == nil {
		return nil
	}

	for _, w := range waiting {
		if w.Status() != order.ReadyToAssign || w.ID().IsEqual(o.ID()) {
			continue
		}
		if err = orders.Update(ctx, w); err != nil {
			return err
		}
	}

	return uow.RunRepository().Add(ctx, createdRun)
}
