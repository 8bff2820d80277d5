// Package guard provides ConstructorGuard, a marker embedded in commands, queries and
// aggregates so that zero values can be told apart from values built by their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is set only by NewConstructorGuard. A struct embedding a zero guard was
// not built through its constructor and must be rejected.
//
// Example usage:
//
//	type ClaimRunCommand struct {
//	    runID kernel.UUID
//	    guard guard.ConstructorGuard
//	}
//
//	func (c ClaimRunCommand) Validate() error {
//	    return c.guard.Validate(ErrClaimRunCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the enclosing value as properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when nil) for a zero guard.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
