package run

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var ErrRunIsNotConstructed = errors.New("Run must be created via NewRun constructor")

// Member is the copy of a member order kept inside the run document.
// The canonical Order stays the source of truth and both are written together.
type Member struct {
	OrderID    kernel.UUID  `json:"orderId"`
	BuyerID    kernel.UUID  `json:"buyerId"`
	PriceCents int64        `json:"priceCents"`
	PinCode    kernel.PIN   `json:"pinCode"`
	Status     order.Status `json:"status"`
}

// MemberOf copies the fields of o kept by the run.
func MemberOf(o *order.Order) Member {
	return Member{
		OrderID:    o.ID(),
		BuyerID:    o.BuyerID(),
		PriceCents: o.PriceCents(),
		PinCode:    o.PinCode(),
		Status:     o.Status(),
	}
}

// Run is the delivery job created when a pair group fills.
// dasherID is set exactly once, by the courier whose claim commits first.
type Run struct {
	kernel.EventRecorder
	kernel.Versioned

	id                   kernel.UUID
	key                  kernel.QueueKey
	pairGroupID          kernel.UUID
	status               Status
	dasherID             *kernel.UUID
	estimatedPayoutCents int64
	deliveryPin          kernel.PIN
	createdAt            time.Time
	claimedAt            *time.Time
	pickedUpAt           *time.Time
	deliveredAt          *time.Time
	members              []Member
	guard                guard.ConstructorGuard
}

// Snapshot is the persisted state of a Run.
type Snapshot struct {
	ID                   kernel.UUID
	HallID               kernel.HallID
	Window               kernel.WindowType
	PairGroupID          kernel.UUID
	Status               Status
	DasherID             *kernel.UUID
	EstimatedPayoutCents int64
	DeliveryPin          kernel.PIN
	CreatedAt            time.Time
	ClaimedAt            *time.Time
	PickedUpAt           *time.Time
	DeliveredAt          *time.Time
	Members              []Member
	Version              int
}

// NewRun creates a run ready for assignment. The estimated payout is the sum of
// member prices and the delivery PIN is the group's shared PIN.
func NewRun(
	id kernel.UUID,
	key kernel.QueueKey,
	pairGroupID kernel.UUID,
	pin kernel.PIN,
	members []Member,
	createdAt time.Time,
) (*Run, error) {
	if err := errors.Join(id.Validate(), pairGroupID.Validate(), pin.Validate(), key.WindowType.Validate()); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, errs.NewValueIsRequiredError("members")
	}

	r := &Run{
		id:          id,
		key:         key,
		pairGroupID: pairGroupID,
		status:      ReadyToAssign,
		deliveryPin: pin,
		createdAt:   createdAt,
		members:     append([]Member(nil), members...),
		guard:       guard.NewConstructorGuard(),
	}
	for _, m := range members {
		r.estimatedPayoutCents += m.PriceCents
	}

	r.Record(Created{
		RunID:                id,
		HallID:               key.HallID,
		Window:               key.WindowType,
		EstimatedPayoutCents: r.estimatedPayoutCents,
	})
	return r, nil
}

// RestoreRun rebuilds a run from storage.
func RestoreRun(s Snapshot) (*Run, error) {
	if err := errors.Join(s.ID.Validate(), s.PairGroupID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	if s.Status != ReadyToAssign && s.Status != Cancelled && s.DasherID == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("dasherId", errs.NewFailedPreconditionError("run is %s", s.Status))
	}

	return &Run{
		Versioned:            kernel.RestoreVersioned(s.Version),
		id:                   s.ID,
		key:                  kernel.QueueKey{HallID: s.HallID, WindowType: s.Window},
		pairGroupID:          s.PairGroupID,
		status:               s.Status,
		dasherID:             kernel.PtrUUID(s.DasherID),
		estimatedPayoutCents: s.EstimatedPayoutCents,
		deliveryPin:          s.DeliveryPin,
		createdAt:            s.CreatedAt,
		claimedAt:            s.ClaimedAt,
		pickedUpAt:           s.PickedUpAt,
		deliveredAt:          s.DeliveredAt,
		members:              append([]Member(nil), s.Members...),
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (r *Run) Validate() error {
	if r == nil {
		return ErrRunIsNotConstructed
	}
	return r.guard.Validate(ErrRunIsNotConstructed)
}

func (r *Run) Snapshot() Snapshot {
	return Snapshot{
		ID:                   r.id,
		HallID:               r.key.HallID,
		Window:               r.key.WindowType,
		PairGroupID:          r.pairGroupID,
		Status:               r.status,
		DasherID:             kernel.PtrUUID(r.dasherID),
		EstimatedPayoutCents: r.estimatedPayoutCents,
		DeliveryPin:          r.deliveryPin,
		CreatedAt:            r.createdAt,
		ClaimedAt:            r.claimedAt,
		PickedUpAt:           r.pickedUpAt,
		DeliveredAt:          r.deliveredAt,
		Members:              r.Members(),
		Version:              r.Version(),
	}
}

func (r *Run) ID() kernel.UUID             { return r.id }
func (r *Run) HallID() kernel.HallID       { return r.key.HallID }
func (r *Run) QueueKey() kernel.QueueKey   { return r.key }
func (r *Run) PairGroupID() kernel.UUID    { return r.pairGroupID }
func (r *Run) Status() Status              { return r.status }
func (r *Run) DasherID() *kernel.UUID      { return kernel.PtrUUID(r.dasherID) }
func (r *Run) EstimatedPayoutCents() int64 { return r.estimatedPayoutCents }
func (r *Run) DeliveryPin() kernel.PIN     { return r.deliveryPin }
func (r *Run) ClaimedAt() *time.Time       { return r.claimedAt }
func (r *Run) PickedUpAt() *time.Time      { return r.pickedUpAt }
func (r *Run) DeliveredAt() *time.Time     { return r.deliveredAt }
func (r *Run) Members() []Member           { return append([]Member(nil), r.members...) }

// MemberOrderIDs lists the canonical orders this run was created from.
func (r *Run) MemberOrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(r.members))
	for _, m := range r.members {
		ids = append(ids, m.OrderID)
	}
	return ids
}

// Claim is the compare-and-set of the claim race: only a ReadyToAssign run can be claimed.
func (r *Run) Claim(dasherID kernel.UUID, at time.Time) error {
	if err := dasherID.Validate(); err != nil {
		return err
	}
	if r.status != ReadyToAssign {
		return errs.NewFailedPreconditionError("run %s is %s and cannot be claimed", r.id, r.status)
	}

	r.dasherID = &dasherID
	r.claimedAt = &at
	r.moveTo(Claimed)
	return nil
}

// RequireDasher fails with PermissionDenied unless dasherID is the assigned courier.
func (r *Run) RequireDasher(dasherID kernel.UUID, action string) error {
	if r.dasherID == nil {
		return errs.NewFailedPreconditionError("run %s has no courier yet", r.id)
	}
	if !r.dasherID.IsEqual(dasherID) {
		return errs.NewPermissionDeniedError(action, "run "+r.id.String())
	}
	return nil
}

func (r *Run) PickUp(dasherID kernel.UUID, at time.Time) error {
	if err := r.RequireDasher(dasherID, "pick up"); err != nil {
		return err
	}
	next, err := r.status.advance(Claimed)
	if err != nil {
		return err
	}
	r.pickedUpAt = &at
	r.moveTo(next)
	return nil
}

// Deliver confirms the handoff. PIN verification against the member orders happens
// before this call, inside the same transaction.
func (r *Run) Deliver(dasherID kernel.UUID, at time.Time) error {
	if err := r.RequireDasher(dasherID, "deliver"); err != nil {
		return err
	}
	next, err := r.status.advance(InProgress)
	if err != nil {
		return err
	}
	r.deliveredAt = &at
	r.moveTo(next)
	return nil
}

func (r *Run) MarkPaid() error {
	next, err := r.status.advance(Delivered)
	if err != nil {
		return err
	}
	r.moveTo(next)
	return nil
}

func (r *Run) Close() error {
	next, err := r.status.advance(Paid)
	if err != nil {
		return err
	}
	r.moveTo(next)
	return nil
}

// Cancel is allowed from any non-terminal status.
func (r *Run) Cancel() error {
	if r.status.IsTerminal() {
		return errs.NewFailedPreconditionError("run %s is %s", r.id, r.status)
	}
	r.moveTo(Cancelled)
	return nil
}

// SyncMember refreshes the copy of o held by the run.
func (r *Run) SyncMember(o *order.Order) error {
	for i := range r.members {
		if r.members[i].OrderID.IsEqual(o.ID()) {
			r.members[i] = MemberOf(o)
			return nil
		}
	}
	return errs.NewObjectNotFoundError("run member", o.ID())
}

func (r *Run) moveTo(next Status) {
	prev := r.status
	r.status = next
	r.Record(StatusChanged{
		RunID:    r.id,
		HallID:   r.key.HallID,
		DasherID: kernel.PtrUUID(r.dasherID),
		From:     prev,
		To:       next,
	})
}
