package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
)

// EventPublisher delivers domain events after the transaction that recorded them commits.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent) error
}
