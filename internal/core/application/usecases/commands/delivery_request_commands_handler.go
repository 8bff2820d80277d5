package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/payment"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/pkg/errs"
)

// DeliveryRequestHandler runs the broadcast matching path.
type DeliveryRequestHandler struct {
	runner     TxRunner
	calculator services.SettlementCalculator
	ttl        time.Duration
	pinSource  func() (kernel.PIN, error)
}

func NewDeliveryRequestHandler(
	runner TxRunner,
	calculator services.SettlementCalculator,
	ttl time.Duration,
) DeliveryRequestHandler {
	if ttl <= 0 {
		ttl = deliveryrequest.DefaultTTL
	}
	return DeliveryRequestHandler{
		runner:     runner,
		calculator: calculator,
		ttl:        ttl,
		pinSource:  kernel.NewPIN,
	}
}

// HandleCreate opens a request for the caller's order. Candidates are every online
// courier except the buyer.
func (h DeliveryRequestHandler) HandleCreate(ctx context.Context, command CreateDeliveryRequestCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		o, err := loadOwnedOrder(ctx, uow, command.OrderID(), command.BuyerID(), "broadcast")
		if err != nil {
			return err
		}
		if o.QueueKey() != command.QueueKey() {
			return errs.NewValueIsInvalidErrorWithCause("hallId/windowType",
				fmt.Errorf("order %s is for %s", o.ID(), o.QueueKey()))
		}

		online, err := uow.DasherAvailabilityRepository().ListOnline(ctx)
		if err != nil {
			return err
		}

		req, err := deliveryrequest.NewDeliveryRequest(deliveryrequest.Params{
			ID:           command.RequestID(),
			OrderID:      o.ID(),
			BuyerID:      o.BuyerID(),
			QueueKey:     o.QueueKey(),
			Candidates:   online,
			Items:        command.Items(),
			MeetPoint:    command.MeetPoint(),
			Instructions: command.Instructions(),
			RequestedAt:  time.Now().UTC(),
			TTL:          h.ttl,
		})
		if err != nil {
			return err
		}

		pin, err := h.pinSource()
		if err != nil {
			return err
		}
		if err = o.BindDeliveryRequest(req.ID(), pin, command.MeetPoint()); err != nil {
			return err
		}

		if err = uow.DeliveryRequestRepository().Add(ctx, req); err != nil {
			return err
		}
		return uow.OrderRepository().Update(ctx, o)
	})
}

// HandleRespond applies an accept or decline. Of several concurrent accepts only the
// first to commit sees an open request; the others are retried and fail.
func (h DeliveryRequestHandler) HandleRespond(ctx context.Context, command RespondToDeliveryRequestCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		requests := uow.DeliveryRequestRepository()
		orders := uow.OrderRepository()

		req, err := requests.Get(ctx, command.RequestID())
		if err != nil {
			return err
		}
		o, err := orders.Get(ctx, req.OrderID())
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if command.Accept() {
			if err = req.Accept(command.DasherID(), now); err != nil {
				return err
			}
			if err = o.AssignDasher(req.ID(), command.DasherID()); err != nil {
				return err
			}
		} else {
			if err = req.Decline(command.DasherID(), now); err != nil {
				return err
			}
			if req.Status() == deliveryrequest.Expired {
				if err = o.ReleaseDeliveryRequest(req.ID()); err != nil {
					return err
				}
			}
		}

		if err = requests.Update(ctx, req); err != nil {
			return err
		}
		return orders.Update(ctx, o)
	})
}

// HandleComplete checks the PIN exactly, delivers the order and settles the request.
func (h DeliveryRequestHandler) HandleComplete(ctx context.Context, command CompleteDeliveryRequestCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		requests := uow.DeliveryRequestRepository()
		orders := uow.OrderRepository()

		req, err := requests.Get(ctx, command.RequestID())
		if err != nil {
			return err
		}
		if err = req.Complete(command.DasherID()); err != nil {
			return err
		}

		o, err := orders.Get(ctx, req.OrderID())
		if err != nil {
			return err
		}
		if !o.VerifyPIN(command.PIN()) {
			return errs.NewFailedPreconditionError("PIN mismatch for order %s", o.ID())
		}
		if err = o.CompleteByRequest(req.ID()); err != nil {
			return err
		}

		fee, err := uow.HallRepository().PlatformFeeOverride(ctx, o.HallID())
		if err != nil {
			return err
		}
		p, err := payment.NewCapturedPayment(
			kernel.NewUUID(),
			payment.RequestSource(req.ID()),
			command.DasherID(),
			[]kernel.UUID{o.BuyerID()},
			h.calculator.Calculate([]int64{o.PriceCents()}, fee),
			time.Now().UTC(),
		)
		if err != nil {
			return err
		}

		if err = requests.Update(ctx, req); err != nil {
			return err
		}
		if err = orders.Update(ctx, o); err != nil {
			return err
		}
		return uow.PaymentRepository().Add(ctx, p)
	})
}

// SweepResult reports one expiry sweep.
type SweepResult struct {
	Expired int
	Skipped int
}

// HandleExpire expires due requests one transaction each. A failure on one request
// does not stop the sweep; the failures are joined and the next sweep retries them.
func (h DeliveryRequestHandler) HandleExpire(ctx context.Context, command ExpireDeliveryRequestsCommand) (SweepResult, error) {
	var result SweepResult
	if err := command.Validate(); err != nil {
		return result, err
	}

	var due []kernel.UUID
	err := h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		var err error
		due, err = uow.DeliveryRequestRepository().ListDueIDs(ctx, command.Now(), command.BatchSize())
		return err
	})
	if err != nil {
		return result, err
	}

	var failures []error
	for _, id := range due {
		err = h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
			return h.expireOne(ctx, uow, id, command.Now())
		})
		switch {
		case err == nil:
			result.Expired++
		case errors.Is(err, errs.ErrFailedPrecondition):
			result.Skipped++
		default:
			failures = append(failures, fmt.Errorf("expire delivery request %s: %w", id, err))
		}
	}

	return result, errors.Join(failures...)
}

func (h DeliveryRequestHandler) expireOne(ctx context.Context, uow UoW, id kernel.UUID, now time.Time) error {
	requests := uow.DeliveryRequestRepository()
	orders := uow.OrderRepository()

	req, err := requests.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = req.Expire(now); err != nil {
		return err
	}

	o, err := orders.Get(ctx, req.OrderID())
	if err != nil {
		return err
	}
	if o.DeliveryRequestID() != nil && o.DeliveryRequestID().IsEqual(req.ID()) {
		if err = o.ReleaseDeliveryRequest(req.ID()); err != nil {
			return err
		}
		if err = orders.Update(ctx, o); err != nil {
			return err
		}
	}

	return requests.Update(ctx, req)
}
