// Package events combines the publishers that receive committed domain events.
package events

import (
	"context"
	"errors"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/ports"
)

// Fanout delivers every batch to each publisher, even when an earlier one fails.
type Fanout []ports.EventPublisher

// NewFanout skips nil publishers.
func NewFanout(publishers ...ports.EventPublisher) Fanout {
	f := make(Fanout, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			f = append(f, p)
		}
	}
	return f
}

func (f Fanout) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	var errs []error
	for _, p := range f {
		errs = append(errs, p.Publish(ctx, events...))
	}
	return errors.Join(errs...)
}
