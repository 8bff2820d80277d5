// Package services provides domain services that coordinate several aggregates of the
// pooling engine, or compute values no single aggregate owns.
//
// The package includes:
//   - PoolDispatcher: seats an order in a pair group and builds the run when the group fills
//   - SettlementCalculator: fee and payout arithmetic of a completed run or request
//   - PinMatcher: handoff PIN verification against the member orders of a run
//   - PricingPolicy: per-buyer price of a pooled meal
//
// Services are pure: they mutate the aggregates they are given and never touch storage.
// The command handlers call them inside a unit of work so that every write lands in one
// transaction.
package services
