package ports

import (
	"context"
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
)

type DeliveryRequestRepository interface {
	Add(ctx context.Context, aggregate *deliveryrequest.DeliveryRequest) error
	Update(ctx context.Context, aggregate *deliveryrequest.DeliveryRequest) error
	Get(ctx context.Context, id kernel.UUID) (*deliveryrequest.DeliveryRequest, error)

	// ListDueIDs returns up to limit open requests whose expiry is not after now.
	ListDueIDs(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
}
