package kernel

import (
	"fmt"

	"campusdash/internal/pkg/errs"
)

// WindowType is a named meal period used to scope pooling and pricing.
type WindowType string

const (
	Breakfast WindowType = "breakfast"
	Lunch     WindowType = "lunch"
	Dinner    WindowType = "dinner"
)

// ParseWindowType accepts "breakfast", "lunch" or "dinner".
func ParseWindowType(s string) (WindowType, error) {
	w := WindowType(s)
	if err := w.Validate(); err != nil {
		return "", err
	}
	return w, nil
}

// Validate rejects anything but the three meal periods.
func (w WindowType) Validate() error {
	switch w {
	case Breakfast, Lunch, Dinner:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("windowType", fmt.Errorf("%q is not a meal window", string(w)))
	}
}

func (w WindowType) String() string {
	return string(w)
}

// HallID identifies a dining hall, e.g. "worcester".
type HallID string

// NewHallID rejects empty identifiers.
func NewHallID(s string) (HallID, error) {
	if s == "" {
		return "", errs.NewValueIsRequiredError("hallId")
	}
	return HallID(s), nil
}

func (h HallID) String() string {
	return string(h)
}

// QueueKey scopes pooling groups and queue snapshots.
type QueueKey struct {
	HallID     HallID
	WindowType WindowType
}

func (k QueueKey) String() string {
	return fmt.Sprintf("%s/%s", k.HallID, k.WindowType)
}
