// Package pairgroup implements the pooling bucket that collects buyer orders for one
// (hall, window) until it reaches its target size.
package pairgroup

import (
	"errors"
	"fmt"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

// TargetSize is the number of orders that fill a group.
const TargetSize = 2

var ErrPairGroupIsNotConstructed = errors.New("PairGroup must be created via NewPairGroup constructor")

// Status of a pair group. At most one Open group may exist per queue key.
type Status int

const (
	Unknown Status = iota
	Open
	Filled
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Filled:
		return "filled"
	default:
		return "unknown"
	}
}

func (s Status) Validate() error {
	if s != Open && s != Filled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// PairGroup invariants: 0 <= filledCount <= targetSize, and the PIN never changes once set.
type PairGroup struct {
	kernel.EventRecorder
	kernel.Versioned

	id          kernel.UUID
	key         kernel.QueueKey
	targetSize  int
	filledCount int
	status      Status
	pin         kernel.PIN
	createdAt   time.Time
	guard       guard.ConstructorGuard
}

// Snapshot is the persisted state of a PairGroup.
type Snapshot struct {
	ID          kernel.UUID
	HallID      kernel.HallID
	Window      kernel.WindowType
	TargetSize  int
	FilledCount int
	Status      Status
	Pin         kernel.PIN
	CreatedAt   time.Time
	Version     int
}

// NewPairGroup opens an empty group for key.
func NewPairGroup(id kernel.UUID, key kernel.QueueKey, createdAt time.Time) (*PairGroup, error) {
	if err := errors.Join(id.Validate(), key.WindowType.Validate(), requireHall(key.HallID)); err != nil {
		return nil, err
	}

	return &PairGroup{
		id:         id,
		key:        key,
		targetSize: TargetSize,
		status:     Open,
		createdAt:  createdAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// RestorePairGroup rebuilds a group from storage.
func RestorePairGroup(s Snapshot) (*PairGroup, error) {
	key := kernel.QueueKey{HallID: s.HallID, WindowType: s.Window}
	if err := errors.Join(s.ID.Validate(), key.WindowType.Validate(), requireHall(s.HallID), s.Status.Validate()); err != nil {
		return nil, err
	}
	if s.TargetSize <= 0 || s.FilledCount < 0 || s.FilledCount > s.TargetSize {
		return nil, errs.NewValueIsOutOfRangeError("filledCount", s.FilledCount, 0, s.TargetSize)
	}
	if !s.Pin.IsZero() {
		if err := s.Pin.Validate(); err != nil {
			return nil, err
		}
	}

	return &PairGroup{
		Versioned:   kernel.RestoreVersioned(s.Version),
		id:          s.ID,
		key:         key,
		targetSize:  s.TargetSize,
		filledCount: s.FilledCount,
		status:      s.Status,
		pin:         s.Pin,
		createdAt:   s.CreatedAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (g *PairGroup) Validate() error {
	if g == nil {
		return ErrPairGroupIsNotConstructed
	}
	return g.guard.Validate(ErrPairGroupIsNotConstructed)
}

func (g *PairGroup) Snapshot() Snapshot {
	return Snapshot{
		ID:          g.id,
		HallID:      g.key.HallID,
		Window:      g.key.WindowType,
		TargetSize:  g.targetSize,
		FilledCount: g.filledCount,
		Status:      g.status,
		Pin:         g.pin,
		CreatedAt:   g.createdAt,
		Version:     g.Version(),
	}
}

func (g *PairGroup) ID() kernel.UUID           { return g.id }
func (g *PairGroup) QueueKey() kernel.QueueKey { return g.key }
func (g *PairGroup) TargetSize() int           { return g.targetSize }
func (g *PairGroup) FilledCount() int          { return g.filledCount }
func (g *PairGroup) Status() Status            { return g.status }
func (g *PairGroup) PIN() kernel.PIN           { return g.pin }
func (g *PairGroup) CreatedAt() time.Time      { return g.createdAt }
func (g *PairGroup) IsFull() bool              { return g.filledCount >= g.targetSize }

// Join takes one seat. pinSource is called only when the group has no PIN yet.
// It reports whether this join filled the group.
func (g *PairGroup) Join(pinSource func() (kernel.PIN, error)) (filled bool, err error) {
	if g.status != Open || g.IsFull() {
		return false, errs.NewFailedPreconditionError("pair group %s is full", g.id)
	}

	if g.pin.IsZero() {
		pin, err := pinSource()
		if err != nil {
			return false, err
		}
		if err := pin.Validate(); err != nil {
			return false, err
		}
		g.pin = pin
	}

	g.filledCount++
	if g.IsFull() {
		g.status = Filled
		g.Record(GroupFilled{GroupID: g.id, HallID: g.key.HallID, Window: g.key.WindowType})
		return true, nil
	}
	return false, nil
}

// Leave frees the seat of a member cancelled while the group was still open.
func (g *PairGroup) Leave() error {
	if g.status != Open {
		return errs.NewFailedPreconditionError("pair group %s is %s", g.id, g.status)
	}
	if g.filledCount == 0 {
		return errs.NewValueIsOutOfRangeError("filledCount", g.filledCount-1, 0, g.targetSize)
	}
	g.filledCount--
	return nil
}

func requireHall(h kernel.HallID) error {
	if h == "" {
		return errs.NewValueIsRequiredError("hallId")
	}
	return nil
}
