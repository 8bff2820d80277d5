package ports

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/payment"
)

// PaymentRepository stores settlement records. Storage holds at most one record per source,
// so a second settlement of the same run or request cannot commit.
type PaymentRepository interface {
	Add(ctx context.Context, aggregate *payment.Payment) error
	Update(ctx context.Context, aggregate *payment.Payment) error
	Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error)
	FindBySource(ctx context.Context, source payment.Source) (*payment.Payment, error)
}
