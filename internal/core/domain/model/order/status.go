package order

import (
	"fmt"
	"slices"

	"campusdash/internal/pkg/errs"
)

// Status is the lifecycle state of a buyer order.
//
//	Requested     -> Pooled, CancelledBuyer
//	Pooled        -> ReadyToAssign, CancelledBuyer
//	ReadyToAssign -> Claimed, CancelledDasher, Expired
//	Claimed       -> InProgress, CancelledDasher
//	InProgress    -> Delivered, Disputed
//	Delivered     -> Paid
//	Paid          -> Closed
//
// CancelledBuyer, CancelledDasher, Expired, Disputed and Closed are terminal.
type Status int

const (
	Unknown Status = iota
	Requested
	Pooled
	ReadyToAssign
	Claimed
	InProgress
	Delivered
	Paid
	Closed
	CancelledBuyer
	CancelledDasher
	Expired
	Disputed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		Requested:       "requested",
		Pooled:          "pooled",
		ReadyToAssign:   "readyToAssign",
		Claimed:         "claimed",
		InProgress:      "inProgress",
		Delivered:       "delivered",
		Paid:            "paid",
		Closed:          "closed",
		CancelledBuyer:  "cancelledBuyer",
		CancelledDasher: "cancelledDasher",
		Expired:         "expired",
		Disputed:        "disputed",
	}
}

// getTransitions lists the only legal successors of each non-terminal status.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal statuses have no successors
	return map[Status][]Status{
		Requested:     {Pooled, CancelledBuyer},
		Pooled:        {ReadyToAssign, CancelledBuyer},
		ReadyToAssign: {Claimed, CancelledDasher, Expired},
		Claimed:       {InProgress, CancelledDasher},
		InProgress:    {Delivered, Disputed},
		Delivered:     {Paid},
		Paid:          {Closed},
	}
}

// Validate rejects Unknown and out-of-range values read from storage or the API.
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

// MarshalText encodes the status by name in events and API responses.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s.Validate() == nil && len(getTransitions()[s]) == 0
}

// IsWaiting reports whether the order still sits in the pooling queue.
func (s Status) IsWaiting() bool {
	return s == Requested || s == Pooled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(getTransitions()[s], next)
}

// TransitionTo returns next, or a FailedPreconditionError when the move is illegal.
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, errs.NewFailedPreconditionError("order cannot move from %s to %s", s, next)
	}
	return next, nil
}

// UnmarshalText decodes a status written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range getStatusStrings() {
		if name == string(text) && status != Unknown {
			*s = status
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", text))
}
