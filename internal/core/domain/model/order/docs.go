// Package order implements the Order aggregate and the order state machine of the
// pooling engine.
//
// Every status change goes through Status.TransitionTo, so no component can move an
// order along an edge that is not in the transition table. The one exception is
// CompleteByRequest: an order bound to an accepted delivery request is handed off
// straight from Requested to Delivered.
//
// Key business rules:
//   - Buyers may cancel only while the order is Requested or Pooled
//   - A pooled order cannot be broadcast and a broadcast order cannot be pooled
//   - Orders in a terminal status are immutable
package order
