package run

import (
	"fmt"

	"campusdash/internal/pkg/errs"
)

// Status of a delivery run:
//
//	ReadyToAssign -> Claimed -> InProgress -> Delivered -> Paid -> Closed
//
// Cancelled is reachable from every status except Closed.
type Status int

const (
	Unknown Status = iota
	ReadyToAssign
	Claimed
	InProgress
	Delivered
	Paid
	Closed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "unknown",
		ReadyToAssign: "readyToAssign",
		Claimed:       "claimed",
		InProgress:    "inProgress",
		Delivered:     "delivered",
		Paid:          "paid",
		Closed:        "closed",
		Cancelled:     "cancelled",
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

func (s Status) IsTerminal() bool {
	return s == Closed || s == Cancelled
}

// next returns the single forward successor of s.
func (s Status) next() (Status, bool) {
	if s < ReadyToAssign || s >= Closed {
		return Unknown, false
	}
	return s + 1, true
}

// advance moves s one step forward, requiring it to be from.
func (s Status) advance(from Status) (Status, error) {
	next, ok := s.next()
	if s != from || !ok {
		return s, errs.NewFailedPreconditionError("run is %s, expected %s", s, from)
	}
	return next, nil
}
