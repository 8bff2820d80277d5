// Package payment implements the settlement record written once per completed run or
// delivery request.
package payment

import (
	"errors"
	"fmt"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewCapturedPayment constructor")

type Status int

const (
	Unknown Status = iota
	Captured
	Pending
	Cancelled
	Refunded
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Captured:  "captured",
		Pending:   "pending",
		Cancelled: "cancelled",
		Refunded:  "refunded",
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

// SourceKind tells what completed: a pooled run or a broadcast delivery request.
type SourceKind string

const (
	FromRun             SourceKind = "run"
	FromDeliveryRequest SourceKind = "deliveryRequest"
)

// Source identifies the run or delivery request a payment settles.
type Source struct {
	Kind SourceKind  `json:"kind"`
	ID   kernel.UUID `json:"id"`
}

func RunSource(runID kernel.UUID) Source { return Source{Kind: FromRun, ID: runID} }

func RequestSource(requestID kernel.UUID) Source {
	return Source{Kind: FromDeliveryRequest, ID: requestID}
}

func (s Source) Validate() error {
	if s.Kind != FromRun && s.Kind != FromDeliveryRequest {
		return errs.NewValueIsInvalidErrorWithCause("source", fmt.Errorf("unknown kind %q", s.Kind))
	}
	return s.ID.Validate()
}

// Breakdown is the cents arithmetic of one settlement.
type Breakdown struct {
	AmountCents        int64
	PlatformFeeCents   int64
	ProcessingFeeCents int64
}

func (b Breakdown) FeeCents() int64 {
	return b.PlatformFeeCents + b.ProcessingFeeCents
}

// PayoutCents is max(amount - fees, 0).
func (b Breakdown) PayoutCents() int64 {
	return max(b.AmountCents-b.FeeCents(), 0)
}

func (b Breakdown) Validate() error {
	if b.AmountCents < 0 || b.PlatformFeeCents < 0 || b.ProcessingFeeCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("settlement", fmt.Errorf("negative cents in %+v", b))
	}
	return nil
}

// Payment is the settlement of one run or delivery request.
type Payment struct {
	kernel.EventRecorder
	kernel.Versioned

	id        kernel.UUID
	source    Source
	dasherID  kernel.UUID
	buyerIDs  []kernel.UUID
	breakdown Breakdown
	status    Status
	createdAt time.Time
	settledAt *time.Time
	guard     guard.ConstructorGuard
}

type Snapshot struct {
	ID        kernel.UUID
	Source    Source
	DasherID  kernel.UUID
	BuyerIDs  []kernel.UUID
	Breakdown Breakdown
	Status    Status
	CreatedAt time.Time
	SettledAt *time.Time
	Version   int
}

// NewCapturedPayment records a settlement in Captured status.
func NewCapturedPayment(
	id kernel.UUID,
	source Source,
	dasherID kernel.UUID,
	buyerIDs []kernel.UUID,
	breakdown Breakdown,
	createdAt time.Time,
) (*Payment, error) {
	if err := errors.Join(id.Validate(), source.Validate(), dasherID.Validate(), breakdown.Validate()); err != nil {
		return nil, err
	}
	if len(buyerIDs) == 0 {
		return nil, errs.NewValueIsRequiredError("buyerIds")
	}

	p := &Payment{
		id:        id,
		source:    source,
		dasherID:  dasherID,
		buyerIDs:  append([]kernel.UUID(nil), buyerIDs...),
		breakdown: breakdown,
		status:    Captured,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}
	p.Record(CapturedEvent{
		PaymentID:   id,
		Source:      source,
		DasherID:    dasherID,
		BuyerIDs:    p.BuyerIDs(),
		AmountCents: breakdown.AmountCents,
		FeeCents:    breakdown.FeeCents(),
		PayoutCents: breakdown.PayoutCents(),
	})
	return p, nil
}

func RestorePayment(s Snapshot) (*Payment, error) {
	if err := errors.Join(s.ID.Validate(), s.Source.Validate(), s.DasherID.Validate(), s.Breakdown.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	return &Payment{
		Versioned: kernel.RestoreVersioned(s.Version),
		id:        s.ID,
		source:    s.Source,
		dasherID:  s.DasherID,
		buyerIDs:  append([]kernel.UUID(nil), s.BuyerIDs...),
		breakdown: s.Breakdown,
		status:    s.Status,
		createdAt: s.CreatedAt,
		settledAt: s.SettledAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (p *Payment) Validate() error {
	if p == nil {
		return ErrPaymentIsNotConstructed
	}
	return p.guard.Validate(ErrPaymentIsNotConstructed)
}

func (p *Payment) Snapshot() Snapshot {
	return Snapshot{
		ID:        p.id,
		Source:    p.source,
		DasherID:  p.dasherID,
		BuyerIDs:  p.BuyerIDs(),
		Breakdown: p.breakdown,
		Status:    p.status,
		CreatedAt: p.createdAt,
		SettledAt: p.settledAt,
		Version:   p.Version(),
	}
}

func (p *Payment) ID() kernel.UUID         { return p.id }
func (p *Payment) Source() Source          { return p.source }
func (p *Payment) DasherID() kernel.UUID   { return p.dasherID }
func (p *Payment) BuyerIDs() []kernel.UUID { return append([]kernel.UUID(nil), p.buyerIDs...) }
func (p *Payment) Breakdown() Breakdown    { return p.breakdown }
func (p *Payment) AmountCents() int64      { return p.breakdown.AmountCents }
func (p *Payment) FeeCents() int64         { return p.breakdown.FeeCents() }
func (p *Payment) PayoutCents() int64      { return p.breakdown.PayoutCents() }
func (p *Payment) Status() Status          { return p.status }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }
func (p *Payment) SettledAt() *time.Time   { return p.settledAt }

// ConfirmSettled records that the processor moved the money. It may happen once.
func (p *Payment) ConfirmSettled(at time.Time) error {
	if err := p.requireOutstanding(); err != nil {
		return err
	}
	p.settledAt = &at
	p.Record(SettledEvent{PaymentID: p.id, Source: p.source})
	return nil
}

// Fail cancels a captured payment the processor could not settle.
func (p *Payment) Fail(reason string) error {
	if err := p.requireOutstanding(); err != nil {
		return err
	}
	p.status = Cancelled
	p.Record(FailedEvent{PaymentID: p.id, Source: p.source, Reason: reason})
	return nil
}

func (p *Payment) requireOutstanding() error {
	if p.status != Captured || p.settledAt != nil {
		return errs.NewFailedPreconditionError("payment %s is %s and has no outstanding settlement", p.id, p.status)
	}
	return nil
}
