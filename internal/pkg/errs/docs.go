// Package errs provides standardized error types for the campus delivery engine.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value is outside its allowed bounds
//   - ObjectNotFoundError: For when a referenced document cannot be found
//   - FailedPreconditionError: For state-machine violations (group full, run not claimable,
//     PIN mismatch, request not open, order not cancellable, no candidate couriers)
//   - PermissionDeniedError: For when the caller is not the owner or assignee of a resource
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Two plain sentinels complete the taxonomy: ErrUnauthenticated for calls without a verified
// identity, and ErrConcurrentModification for write-write conflicts reported by the store.
// The latter is consumed by the transaction retry loop and is not a business failure.
package errs
