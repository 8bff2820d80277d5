// Package run implements the delivery run created when a pair group fills, and its
// lifecycle from claim to settlement.
//
// Claim, PickUp and Deliver re-check the current status on every call, so a retried
// transaction that lost a race observes the new status and fails with a
// FailedPreconditionError instead of applying twice.
package run
