package services

import (
	"errors"
	"fmt"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/pairgroup"
	"campusdash/internal/core/domain/model/run"
	"campusdash/internal/pkg/errs"
)

// ErrGroupMembersMismatch is returned when the stored members of a filling group do not
// add up to its target size.
var ErrGroupMembersMismatch = errors.New("pair group members do not match its filled count")

// PoolDispatcher seats a requested order in an open pair group.
//
// Example usage:
//
//	dispatcher := NewPoolDispatcher(kernel.NewPIN)
//	createdRun, err := dispatcher.Pool(o, group, pooledMembers, kernel.NewUUID(), time.Now())
//	if err != nil {
//	    return err
//	}
//	if createdRun != nil {
//	    // the group filled: persist the run together with every member order
//	}
type PoolDispatcher struct {
	pinSource func() (kernel.PIN, error)
}

func NewPoolDispatcher(pinSource func() (kernel.PIN, error)) PoolDispatcher {
	if pinSource == nil {
		pinSource = kernel.NewPIN
	}
	return PoolDispatcher{pinSource: pinSource}
}

// Pool joins o to group. waiting holds the orders already seated in group.
// When this join fills the group every waiting member moves to ReadyToAssign as well and
// the run is returned; otherwise the returned run is nil.
func (d PoolDispatcher) Pool(
	o *order.Order,
	group *pairgroup.PairGroup,
	waiting []*order.Order,
	runID kernel.UUID,
	now time.Time,
) (*run.Run, error) {
	if err := errors.Join(o.Validate(), group.Validate()); err != nil {
		return nil, err
	}
	if o.QueueKey() != group.QueueKey() {
		return nil, errs.NewValueIsInvalidErrorWithCause("pairGroup",
			fmt.Errorf("group %s serves %s, order %s is for %s", group.ID(), group.QueueKey(), o.ID(), o.QueueKey()))
	}
	if o.Status() != order.Requested {
		return nil, errs.NewFailedPreconditionError("order %s is %s and cannot be pooled", o.ID(), o.Status())
	}
	if o.DeliveryRequestID() != nil {
		return nil, errs.NewFailedPreconditionError("order %s is bound to a delivery request", o.ID())
	}

	filled, err := group.Join(d.pinSource)
	if err != nil {
		return nil, err
	}
	if err = o.JoinPool(group.ID(), group.PIN(), filled); err != nil {
		return nil, err
	}
	if !filled {
		return nil, nil
	}

	members := make([]*order.Order, 0, group.TargetSize())
	for _, w := range waiting {
		if w.Status() != order.Pooled || w.PairGroupID() == nil || !w.PairGroupID().IsEqual(group.ID()) {
			continue
		}
		if err = w.MarkReadyToAssign(); err != nil {
			return nil, err
		}
		members = append(members, w)
	}
	members = append(members, o)

	if len(members) != group.TargetSize() {
		return nil, fmt.Errorf("%w: group %s has %d members, want %d",
			ErrGroupMembersMismatch, group.ID(), len(members), group.TargetSize())
	}

	copies := make([]run.Member, 0, len(members))
	for _, m := range members {
		copies = append(copies, run.MemberOf(m))
	}

	return run.NewRun(runID, group.QueueKey(), group.ID(), group.PIN(), copies, now)
}
