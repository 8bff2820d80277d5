package services

import (
	"strings"
	"unicode"

	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/errs"
)

// PinMatcher checks the PINs a courier enters at handoff. The input may carry several
// codes separated by commas or whitespace, and every member order's code must be among them.
type PinMatcher struct{}

// Tokenize splits raw on commas and whitespace, dropping empty tokens.
func (PinMatcher) Tokenize(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// Verify fails with a FailedPreconditionError unless every order's PIN was provided.
// A single missing code rejects the whole handoff.
func (m PinMatcher) Verify(orders []*order.Order, raw string) error {
	provided := make(map[string]struct{})
	for _, token := range m.Tokenize(raw) {
		provided[token] = struct{}{}
	}
	if len(provided) == 0 {
		return errs.NewFailedPreconditionError("no PIN provided")
	}

	for _, o := range orders {
		if o.PinCode().IsZero() {
			return errs.NewFailedPreconditionError("order %s has no PIN", o.ID())
		}
		if _, ok := provided[o.PinCode().String()]; !ok {
			return errs.NewFailedPreconditionError("PIN mismatch for order %s", o.ID())
		}
	}
	return nil
}
