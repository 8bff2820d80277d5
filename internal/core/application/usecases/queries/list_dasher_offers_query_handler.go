package queries

import (
	"context"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListDasherOffersQueryHandler struct {
	db *gorm.DB
}

func NewListDasherOffersQueryHandler(db *gorm.DB) ListDasherOffersQueryHandler {
	return ListDasherOffersQueryHandler{db: db}
}

// Handle returns offers soonest-expiring first.
func (h ListDasherOffersQueryHandler) Handle(ctx context.Context, query ListDasherOffersQuery) ([]DasherOfferView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			hall_id,
			window_type,
			items,
			meet_point,
			instructions,
			expires_at
		FROM delivery_requests
		WHERE status = @status
			AND expires_at > @now
			AND @dasher = ANY(candidates)
		ORDER BY expires_at, id
	`, map[string]any{
		"status": int(deliveryrequest.Open),
		"now":    query.Now(),
		"dasher": query.DasherID().String(),
	}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := make([]DasherOfferView, 0)
	for rows.Next() {
		var view DasherOfferView
		var id, orderID uuid.UUID
		var hall, window string
		var items datatypes.JSONSlice[deliveryrequest.Item]

		err = rows.Scan(&id, &orderID, &hall, &window, &items, &view.MeetPoint, &view.Instructions, &view.ExpiresAt)
		if err != nil {
			return nil, err
		}

		if view.RequestID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		view.HallID = kernel.HallID(hall)
		view.WindowType = kernel.WindowType(window)
		view.Items = items
		offers = append(offers, view)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}
