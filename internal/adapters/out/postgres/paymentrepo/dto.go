// Package paymentrepo persists settlement records, at most one per run or delivery request.
package paymentrepo

import (
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/payment"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PaymentDTO struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SourceKind         string         `gorm:"uniqueIndex:idx_payment_records_source,priority:1;not null"`
	SourceID           uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_payment_records_source,priority:2;not null"`
	DasherID           uuid.UUID      `gorm:"type:uuid;index;not null"`
	BuyerIDs           pq.StringArray `gorm:"type:text[];not null"`
	AmountCents        int64          `gorm:"not null"`
	PlatformFeeCents   int64          `gorm:"not null"`
	ProcessingFeeCents int64          `gorm:"not null"`
	PayoutCents        int64          `gorm:"not null"`
	Status             int            `gorm:"not null"`
	CreatedAt          time.Time      `gorm:"not null"`
	SettledAt          *time.Time
	Version            int `gorm:"not null"`
}

func (PaymentDTO) TableName() string {
	return "payment_records"
}

func fromDomain(p *payment.Payment, version int) PaymentDTO {
	s := p.Snapshot()

	buyers := make(pq.StringArray, 0, len(s.BuyerIDs))
	for _, b := range s.BuyerIDs {
		buyers = append(buyers, b.String())
	}

	return PaymentDTO{
		ID:                 s.ID.Bytes(),
		SourceKind:         string(s.Source.Kind),
		SourceID:           s.Source.ID.Bytes(),
		DasherID:           s.DasherID.Bytes(),
		BuyerIDs:           buyers,
		AmountCents:        s.Breakdown.AmountCents,
		PlatformFeeCents:   s.Breakdown.PlatformFeeCents,
		ProcessingFeeCents: s.Breakdown.ProcessingFeeCents,
		PayoutCents:        s.Breakdown.PayoutCents(),
		Status:             int(s.Status),
		CreatedAt:          s.CreatedAt,
		SettledAt:          s.SettledAt,
		Version:            version,
	}
}

func toDomain(dto PaymentDTO) (*payment.Payment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	sourceID, err := kernel.UUIDFromBytes(dto.SourceID[:])
	if err != nil {
		return nil, err
	}
	dasherID, err := kernel.UUIDFromBytes(dto.DasherID[:])
	if err != nil {
		return nil, err
	}

	buyers := make([]kernel.UUID, 0, len(dto.BuyerIDs))
	for _, raw := range dto.BuyerIDs {
		b, bErr := kernel.UUIDFromString(raw)
		if bErr != nil {
			return nil, bErr
		}
		buyers = append(buyers, b)
	}

	var settledAt *time.Time
	if dto.SettledAt != nil {
		t := dto.SettledAt.UTC()
		settledAt = &t
	}

	return payment.RestorePayment(payment.Snapshot{
		ID:       id,
		Source:   payment.Source{Kind: payment.SourceKind(dto.SourceKind), ID: sourceID},
		DasherID: dasherID,
		BuyerIDs: buyers,
		Breakdown: payment.Breakdown{
			AmountCents:        dto.AmountCents,
			PlatformFeeCents:   dto.PlatformFeeCents,
			ProcessingFeeCents: dto.ProcessingFeeCents,
		},
		Status:    payment.Status(dto.Status),
		CreatedAt: dto.CreatedAt.UTC(),
		SettledAt: settledAt,
		Version:   dto.Version,
	})
}
