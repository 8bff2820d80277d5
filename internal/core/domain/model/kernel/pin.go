package kernel

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"campusdash/internal/pkg/errs"
)

// PINLength is the number of digits in a handoff PIN.
const PINLength = 6

// PIN is the numeric code a buyer reads to the courier at handoff.
type PIN string

// NewPIN draws a uniformly random 6-digit PIN, leading zeros included.
func NewPIN() (PIN, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return PIN(fmt.Sprintf("%06d", n.Int64())), nil
}

// ParsePIN validates a stored or provided PIN.
func ParsePIN(s string) (PIN, error) {
	p := PIN(strings.TrimSpace(s))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate requires exactly six ASCII digits.
func (p PIN) Validate() error {
	if len(p) != PINLength {
		return errs.NewValueIsInvalidErrorWithCause("pin", fmt.Errorf("expected %d digits", PINLength))
	}
	for _, r := range string(p) {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("pin", fmt.Errorf("%q is not a digit", r))
		}
	}
	return nil
}

func (p PIN) IsZero() bool {
	return p == ""
}

func (p PIN) String() string {
	return string(p)
}
