package ports

import (
	"context"

	"campusdash/internal/core/domain/model/dasher"
	"campusdash/internal/core/domain/model/kernel"
)

// DasherAvailabilityRepository holds the courier online flags fed by the courier directory.
type DasherAvailabilityRepository interface {
	// Save inserts the flag or updates it with a version check.
	Save(ctx context.Context, aggregate *dasher.Availability) error

	Get(ctx context.Context, dasherID kernel.UUID) (*dasher.Availability, error)

	// ListOnline returns the ids of every courier currently online.
	ListOnline(ctx context.Context) ([]kernel.UUID, error)
}
