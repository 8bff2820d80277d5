// Package deliveryrequest implements the broadcast matching path: one buyer order is
// offered to every online courier and the first accept to commit wins.
package deliveryrequest

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

// DefaultTTL is how long a request stays open before the sweeper expires it.
const DefaultTTL = 10 * time.Minute

var ErrDeliveryRequestIsNotConstructed = errors.New("DeliveryRequest must be created via NewDeliveryRequest constructor")

type Status int

const (
	Unknown Status = iota
	Open
	Assigned
	Expired
	Completed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Open:      "open",
		Assigned:  "assigned",
		Expired:   "expired",
		Completed: "completed",
	}
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Item is one line of the buyer's meal.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func (i Item) Validate() error {
	if i.Name == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	if i.Quantity <= 0 {
		return errs.NewValueIsOutOfRangeError("item quantity", i.Quantity, 1, "unbounded")
	}
	return nil
}

// DeliveryRequest invariants: assignedDasherID is set once, together with the move to
// Assigned; when the candidate set runs empty without an accept the request is Expired.
type DeliveryRequest struct {
	kernel.EventRecorder
	kernel.Versioned

	id               kernel.UUID
	orderID          kernel.UUID
	buyerID          kernel.UUID
	key              kernel.QueueKey
	status           Status
	requestedAt      time.Time
	expiresAt        time.Time
	candidates       []kernel.UUID
	assignedDasherID *kernel.UUID
	items            []Item
	meetPoint        string
	instructions     string
	guard            guard.ConstructorGuard
}

// Snapshot is the persisted state of a DeliveryRequest.
type Snapshot struct {
	ID               kernel.UUID
	OrderID          kernel.UUID
	BuyerID          kernel.UUID
	HallID           kernel.HallID
	Window           kernel.WindowType
	Status           Status
	RequestedAt      time.Time
	ExpiresAt        time.Time
	Candidates       []kernel.UUID
	AssignedDasherID *kernel.UUID
	Items            []Item
	MeetPoint        string
	Instructions     string
	Version          int
}

// Params groups the inputs of NewDeliveryRequest.
type Params struct {
	ID           kernel.UUID
	OrderID      kernel.UUID
	BuyerID      kernel.UUID
	QueueKey     kernel.QueueKey
	Candidates   []kernel.UUID
	Items        []Item
	MeetPoint    string
	Instructions string
	RequestedAt  time.Time
	TTL          time.Duration
}

// NewDeliveryRequest opens a request. The buyer is never a candidate and an empty
// candidate set is a precondition failure.
func NewDeliveryRequest(p Params) (*DeliveryRequest, error) {
	if err := errors.Join(p.ID.Validate(), p.OrderID.Validate(), p.BuyerID.Validate(), p.QueueKey.WindowType.Validate()); err != nil {
		return nil, err
	}
	if p.MeetPoint == "" {
		return nil, errs.NewValueIsRequiredError("meetPoint")
	}
	if len(p.Items) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}
	for _, item := range p.Items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}
	if p.TTL <= 0 {
		p.TTL = DefaultTTL
	}

	candidates := make([]kernel.UUID, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		if c.IsEqual(p.BuyerID) || containsID(candidates, c) {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, errs.NewFailedPreconditionError("no couriers are online")
	}

	r := &DeliveryRequest{
		id:           p.ID,
		orderID:      p.OrderID,
		buyerID:      p.BuyerID,
		key:          p.QueueKey,
		status:       Open,
		requestedAt:  p.RequestedAt,
		expiresAt:    p.RequestedAt.Add(p.TTL),
		candidates:   candidates,
		items:        slices.Clone(p.Items),
		meetPoint:    p.MeetPoint,
		instructions: p.Instructions,
		guard:        guard.NewConstructorGuard(),
	}
	r.Record(Opened{
		RequestID:  r.id,
		OrderID:    r.orderID,
		HallID:     r.key.HallID,
		Candidates: r.Candidates(),
		ExpiresAt:  r.expiresAt,
	})
	return r, nil
}

// RestoreDeliveryRequest rebuilds a request from storage.
func RestoreDeliveryRequest(s Snapshot) (*DeliveryRequest, error) {
	if err := errors.Join(s.ID.Validate(), s.OrderID.Validate(), s.BuyerID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	if (s.Status == Assigned || s.Status == Completed) != (s.AssignedDasherID != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause("assignedDasherId",
			fmt.Errorf("inconsistent with status %s", s.Status))
	}

	return &DeliveryRequest{
		Versioned:        kernel.RestoreVersioned(s.Version),
		id:               s.ID,
		orderID:          s.OrderID,
		buyerID:          s.BuyerID,
		key:              kernel.QueueKey{HallID: s.HallID, WindowType: s.Window},
		status:           s.Status,
		requestedAt:      s.RequestedAt,
		expiresAt:        s.ExpiresAt,
		candidates:       slices.Clone(s.Candidates),
		assignedDasherID: kernel.PtrUUID(s.AssignedDasherID),
		items:            slices.Clone(s.Items),
		meetPoint:        s.MeetPoint,
		instructions:     s.Instructions,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (r *DeliveryRequest) Validate() error {
	if r == nil {
		return ErrDeliveryRequestIsNotConstructed
	}
	return r.guard.Validate(ErrDeliveryRequestIsNotConstructed)
}

func (r *DeliveryRequest) Snapshot() Snapshot {
	return Snapshot{
		ID:               r.id,
		OrderID:          r.orderID,
		BuyerID:          r.buyerID,
		HallID:           r.key.HallID,
		Window:           r.key.WindowType,
		Status:           r.status,
		RequestedAt:      r.requestedAt,
		ExpiresAt:        r.expiresAt,
		Candidates:       r.Candidates(),
		AssignedDasherID: kernel.PtrUUID(r.assignedDasherID),
		Items:            slices.Clone(r.items),
		MeetPoint:        r.meetPoint,
		Instructions:     r.instructions,
		Version:          r.Version(),
	}
}

func (r *DeliveryRequest) ID() kernel.UUID                { return r.id }
func (r *DeliveryRequest) OrderID() kernel.UUID           { return r.orderID }
func (r *DeliveryRequest) BuyerID() kernel.UUID           { return r.buyerID }
func (r *DeliveryRequest) QueueKey() kernel.QueueKey      { return r.key }
func (r *DeliveryRequest) Status() Status                 { return r.status }
func (r *DeliveryRequest) ExpiresAt() time.Time           { return r.expiresAt }
func (r *DeliveryRequest) Candidates() []kernel.UUID      { return slices.Clone(r.candidates) }
func (r *DeliveryRequest) AssignedDasherID() *kernel.UUID { return kernel.PtrUUID(r.assignedDasherID) }
func (r *DeliveryRequest) Items() []Item                  { return slices.Clone(r.items) }
func (r *DeliveryRequest) MeetPoint() string              { return r.meetPoint }
func (r *DeliveryRequest) Instructions() string           { return r.instructions }

// IsDue reports whether an open request has outlived its expiry time.
func (r *DeliveryRequest) IsDue(now time.Time) bool {
	return r.status == Open && !now.Before(r.expiresAt)
}

// Accept assigns the request to dasherID. Once another accept has committed the
// status is no longer Open and every later accept fails.
func (r *DeliveryRequest) Accept(dasherID kernel.UUID, now time.Time) error {
	if err := r.checkResponder(dasherID, now); err != nil {
		return err
	}
	r.assignedDasherID = &dasherID
	r.status = Assigned
	r.Record(Accepted{RequestID: r.id, OrderID: r.orderID, DasherID: dasherID})
	return nil
}

// Decline drops dasherID from the candidates and expires the request when none remain.
func (r *DeliveryRequest) Decline(dasherID kernel.UUID, now time.Time) error {
	if err := r.checkResponder(dasherID, now); err != nil {
		return err
	}
	r.candidates = slices.DeleteFunc(r.candidates, dasherID.IsEqual)
	r.Record(Declined{RequestID: r.id, DasherID: dasherID, Remaining: len(r.candidates)})

	if len(r.candidates) == 0 {
		r.expire()
	}
	return nil
}

// Complete marks the handoff done. The PIN is checked against the order by the caller.
func (r *DeliveryRequest) Complete(dasherID kernel.UUID) error {
	if r.status != Assigned {
		return errs.NewFailedPreconditionError("delivery request %s is %s", r.id, r.status)
	}
	if !r.assignedDasherID.IsEqual(dasherID) {
		return errs.NewPermissionDeniedError("complete", "delivery request "+r.id.String())
	}
	r.status = Completed
	r.Record(CompletedEvent{RequestID: r.id, OrderID: r.orderID, DasherID: dasherID})
	return nil
}

// Expire is applied by the sweeper to a due request.
func (r *DeliveryRequest) Expire(now time.Time) error {
	if !r.IsDue(now) {
		return errs.NewFailedPreconditionError("delivery request %s is %s until %s", r.id, r.status, r.expiresAt.Format(time.RFC3339))
	}
	r.expire()
	return nil
}

// Withdraw expires an open request whose order the buyer cancelled.
func (r *DeliveryRequest) Withdraw() error {
	if r.status != Open {
		return errs.NewFailedPreconditionError("delivery request %s is %s", r.id, r.status)
	}
	r.expire()
	return nil
}

func (r *DeliveryRequest) checkResponder(dasherID kernel.UUID, now time.Time) error {
	if r.status != Open {
		return errs.NewFailedPreconditionError("delivery request %s is %s", r.id, r.status)
	}
	if !now.Before(r.expiresAt) {
		return errs.NewFailedPreconditionError("delivery request %s expired at %s", r.id, r.expiresAt.Format(time.RFC3339))
	}
	if !containsID(r.candidates, dasherID) {
		return errs.NewPermissionDeniedError("respond to", "delivery request "+r.id.String())
	}
	return nil
}

func (r *DeliveryRequest) expire() {
	r.status = Expired
	r.Record(ExpiredEvent{RequestID: r.id, OrderID: r.orderID})
}

func containsID(ids []kernel.UUID, id kernel.UUID) bool {
	return slices.ContainsFunc(ids, id.IsEqual)
}
