// Package ports defines the contracts between the pooling engine and its infrastructure:
// document repositories, the unit of work and the domain event publisher.
//
// Every repository write is a compare-and-set on the document version. A write that lost
// a race fails with errs.ErrConcurrentModification and the whole transaction is retried.
package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
)

// OrderRepository persists Order documents, the source of truth for order status.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the order if its version is unchanged since it was read.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ErrObjectNotFound when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetMany returns the orders with the given ids in the same order.
	// A missing id fails with errs.ErrObjectNotFound.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)

	// ListByPairGroup returns every order seated in the group, whatever its status.
	ListByPairGroup(ctx context.Context, groupID kernel.UUID) ([]*order.Order, error)

	// ListWaiting returns the Requested and Pooled orders of key, oldest first.
	ListWaiting(ctx context.Context, key kernel.QueueKey) ([]*order.Order, error)
}
