// Package kernel provides core domain primitives shared by every aggregate of the
// order-pooling and run-settlement engine.
//
// The package includes:
//   - UUID: identifiers for orders, groups, runs, requests, payments and users
//   - WindowType, HallID, QueueKey: the (hall, meal window) scope of pooling and queues
//   - PIN: the 6-digit handoff code shared by the members of a pair group
//   - DomainEvent, EventRecorder: events collected by the unit of work after commit
//   - Versioned: the optimistic-concurrency version of a stored document
package kernel
