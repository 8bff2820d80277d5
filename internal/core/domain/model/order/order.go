package order

import (
	"errors"
	"fmt"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned for an Order not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
	// ErrPriceIsRequired is returned for a non-positive price.
	ErrPriceIsRequired = errs.NewValueIsRequiredError("priceCents")
)

// Order is one buyer's request for a dining-hall meal. It is the canonical record of
// status; runs and delivery requests only keep copies.
type Order struct {
	kernel.EventRecorder
	kernel.Versioned

	id                kernel.UUID
	buyerID           kernel.UUID
	hallID            kernel.HallID
	window            kernel.WindowType
	status            Status
	priceCents        int64
	createdAt         time.Time
	pairGroupID       *kernel.UUID
	pinCode           kernel.PIN
	deliveryRequestID *kernel.UUID
	meetPoint         string
	dasherID          *kernel.UUID
	guard             guard.ConstructorGuard
}

// Snapshot is the persisted state of an Order.
type Snapshot struct {
	ID                kernel.UUID
	BuyerID           kernel.UUID
	HallID            kernel.HallID
	Window            kernel.WindowType
	Status            Status
	PriceCents        int64
	CreatedAt         time.Time
	PairGroupID       *kernel.UUID
	PinCode           kernel.PIN
	DeliveryRequestID *kernel.UUID
	MeetPoint         string
	DasherID          *kernel.UUID
	Version           int
}

// NewOrder creates an order in Requested status.
func NewOrder(
	id, buyerID kernel.UUID,
	hallID kernel.HallID,
	window kernel.WindowType,
	priceCents int64,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:    Requested,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setHall(hallID),
		o.setWindow(window),
		o.setPrice(priceCents),
	); err != nil {
		return nil, err
	}

	o.Record(Placed{OrderID: id, BuyerID: buyerID, HallID: hallID, Window: window, PriceCents: priceCents})
	return o, nil
}

// RestoreOrder rebuilds an order from storage without recording events.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		Versioned:         kernel.RestoreVersioned(s.Version),
		createdAt:         s.CreatedAt,
		pairGroupID:       kernel.PtrUUID(s.PairGroupID),
		pinCode:           s.PinCode,
		deliveryRequestID: kernel.PtrUUID(s.DeliveryRequestID),
		meetPoint:         s.MeetPoint,
		dasherID:          kernel.PtrUUID(s.DasherID),
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setBuyerID(s.BuyerID),
		o.setHall(s.HallID),
		o.setWindow(s.Window),
		o.setPrice(s.PriceCents),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	return o, nil
}

// Validate ensures the Order was built through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// Snapshot returns the state to persist.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                o.id,
		BuyerID:           o.buyerID,
		HallID:            o.hallID,
		Window:            o.window,
		Status:            o.status,
		PriceCents:        o.priceCents,
		CreatedAt:         o.createdAt,
		PairGroupID:       kernel.PtrUUID(o.pairGroupID),
		PinCode:           o.pinCode,
		DeliveryRequestID: kernel.PtrUUID(o.deliveryRequestID),
		MeetPoint:         o.meetPoint,
		DasherID:          kernel.PtrUUID(o.dasherID),
		Version:           o.Version(),
	}
}

func (o *Order) ID() kernel.UUID           { return o.id }
func (o *Order) BuyerID() kernel.UUID      { return o.buyerID }
func (o *Order) HallID() kernel.HallID     { return o.hallID }
func (o *Order) Window() kernel.WindowType { return o.window }
func (o *Order) QueueKey() kernel.QueueKey {
	return kernel.QueueKey{HallID: o.hallID, WindowType: o.window}
}
func (o *Order) Status() Status                     { return o.status }
func (o *Order) PriceCents() int64                  { return o.priceCents }
func (o *Order) CreatedAt() time.Time               { return o.createdAt }
func (o *Order) PairGroupID() *kernel.UUID          { return kernel.PtrUUID(o.pairGroupID) }
func (o *Order) PinCode() kernel.PIN                { return o.pinCode }
func (o *Order) DeliveryRequestID() *kernel.UUID    { return kernel.PtrUUID(o.deliveryRequestID) }
func (o *Order) MeetPoint() string                  { return o.meetPoint }
func (o *Order) DasherID() *kernel.UUID             { return kernel.PtrUUID(o.dasherID) }
func (o *Order) IsOwnedBy(buyerID kernel.UUID) bool { return o.buyerID.IsEqual(buyerID) }

// JoinPool binds the order to a pair group and its shared PIN. The order becomes Pooled,
// and ReadyToAssign right after when this join filled the group.
func (o *Order) JoinPool(groupID kernel.UUID, pin kernel.PIN, filled bool) error {
	if err := errors.Join(groupID.Validate(), pin.Validate()); err != nil {
		return err
	}
	if o.deliveryRequestID != nil {
		return errs.NewFailedPreconditionError("order %s is bound to delivery request %s", o.id, o.deliveryRequestID)
	}
	if err := o.moveTo(Pooled); err != nil {
		return err
	}

	o.pairGroupID = &groupID
	o.pinCode = pin

	if filled {
		return o.MarkReadyToAssign()
	}
	return nil
}

// MarkReadyToAssign is applied to every member once its group fills.
func (o *Order) MarkReadyToAssign() error {
	return o.moveTo(ReadyToAssign)
}

// CancelByBuyer is allowed only while the order waits in the queue.
func (o *Order) CancelByBuyer() error {
	if !o.status.IsWaiting() {
		return errs.NewFailedPreconditionError("order %s is %s and can no longer be cancelled", o.id, o.status)
	}
	return o.moveTo(CancelledBuyer)
}

// Claim records the courier that won the run.
func (o *Order) Claim(dasherID kernel.UUID) error {
	if err := dasherID.Validate(); err != nil {
		return err
	}
	if err := o.moveTo(Claimed); err != nil {
		return err
	}
	o.dasherID = &dasherID
	return nil
}

func (o *Order) StartDelivery() error {
	return o.moveTo(InProgress)
}

func (o *Order) MarkDelivered() error {
	return o.moveTo(Delivered)
}

func (o *Order) CancelByDasher() error {
	return o.moveTo(CancelledDasher)
}

func (o *Order) MarkPaid() error {
	return o.moveTo(Paid)
}

func (o *Order) Close() error {
	return o.moveTo(Closed)
}

// BindDeliveryRequest attaches a broadcast request and the PIN the courier must present.
// Pooled orders and orders with a live request cannot be bound.
func (o *Order) BindDeliveryRequest(requestID kernel.UUID, pin kernel.PIN, meetPoint string) error {
	if err := errors.Join(requestID.Validate(), pin.Validate()); err != nil {
		return err
	}
	switch {
	case o.status != Requested:
		return errs.NewFailedPreconditionError("order %s is %s, broadcast needs a requested order", o.id, o.status)
	case o.pairGroupID != nil:
		return errs.NewFailedPreconditionError("order %s is already pooled", o.id)
	case o.deliveryRequestID != nil:
		return errs.NewFailedPreconditionError("order %s already has delivery request %s", o.id, o.deliveryRequestID)
	}

	o.deliveryRequestID = &requestID
	o.pinCode = pin
	o.meetPoint = meetPoint
	return nil
}

// AssignDasher records the courier that accepted the bound delivery request.
func (o *Order) AssignDasher(requestID, dasherID kernel.UUID) error {
	if err := o.requireBoundTo(requestID); err != nil {
		return err
	}
	if o.dasherID != nil {
		return errs.NewFailedPreconditionError("order %s already has a courier", o.id)
	}
	o.dasherID = &dasherID
	o.Record(DasherAssigned{OrderID: o.id, RequestID: requestID, DasherID: dasherID})
	return nil
}

// ReleaseDeliveryRequest detaches an expired request so the buyer may pool or broadcast again.
func (o *Order) ReleaseDeliveryRequest(requestID kernel.UUID) error {
	if err := o.requireBoundTo(requestID); err != nil {
		return err
	}
	if o.dasherID != nil {
		return errs.NewFailedPreconditionError("order %s already has a courier", o.id)
	}
	o.deliveryRequestID = nil
	o.pinCode = ""
	o.meetPoint = ""
	return nil
}

// CompleteByRequest is the broadcast-path handoff: Requested goes straight to Delivered,
// which only orders bound to an assigned request may do.
func (o *Order) CompleteByRequest(requestID kernel.UUID) error {
	if err := o.requireBoundTo(requestID); err != nil {
		return err
	}
	if o.status != Requested || o.dasherID == nil {
		return errs.NewFailedPreconditionError("order %s is %s and cannot be completed by its request", o.id, o.status)
	}
	o.setStatus(Delivered)
	return nil
}

// VerifyPIN compares a single provided value with the stored code.
func (o *Order) VerifyPIN(pin string) bool {
	return !o.pinCode.IsZero() && string(o.pinCode) == pin
}

func (o *Order) requireBoundTo(requestID kernel.UUID) error {
	if o.deliveryRequestID == nil || !o.deliveryRequestID.IsEqual(requestID) {
		return errs.NewFailedPreconditionError("order %s is not bound to delivery request %s", o.id, requestID)
	}
	return nil
}

func (o *Order) moveTo(next Status) error {
	if o.status.IsTerminal() {
		return errs.NewFailedPreconditionError("order %s is %s", o.id, o.status)
	}
	if _, err := o.status.TransitionTo(next); err != nil {
		return err
	}
	o.setStatus(next)
	return nil
}

func (o *Order) setStatus(next Status) {
	prev := o.status
	o.status = next
	o.Record(StatusChanged{
		OrderID: o.id,
		BuyerID: o.buyerID,
		HallID:  o.hallID,
		Window:  o.window,
		From:    prev,
		To:      next,
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("buyerId", err)
	}
	o.buyerID = id
	return nil
}

func (o *Order) setHall(hallID kernel.HallID) error {
	if hallID == "" {
		return errs.NewValueIsRequiredError("hallId")
	}
	o.hallID = hallID
	return nil
}

func (o *Order) setWindow(window kernel.WindowType) error {
	if err := window.Validate(); err != nil {
		return err
	}
	o.window = window
	return nil
}

func (o *Order) setPrice(priceCents int64) error {
	if priceCents <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("priceCents", fmt.Errorf("%d is not greater than 0", priceCents))
	}
	o.priceCents = priceCents
	return nil
}
