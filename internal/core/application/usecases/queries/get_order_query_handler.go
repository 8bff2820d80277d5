package queries

import (
	"context"
	"database/sql"
	"errors"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	var (
		view                             OrderView
		id, buyerID                      uuid.UUID
		pairGroupID, requestID, dasherID uuid.NullUUID
		hall, window, pin, meetPoint     sql.NullString
		status                           int
	)
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			buyer_id,
			hall_id,
			window_type,
			status,
			price_cents,
			created_at,
			pair_group_id,
			delivery_request_id,
			dasher_id,
			meet_point,
			pin_code
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()
	err := row.Scan(&id, &buyerID, &hall, &window, &status, &view.PriceCents, &view.CreatedAt,
		&pairGroupID, &requestID, &dasherID, &meetPoint, &pin)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}
	if err != nil {
		return OrderView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return OrderView{}, err
	}
	if view.BuyerID, err = kernel.UUIDFromBytes(buyerID[:]); err != nil {
		return OrderView{}, err
	}
	view.HallID = kernel.HallID(hall.String)
	view.WindowType = kernel.WindowType(window.String)
	view.Status = order.Status(status)
	view.MeetPoint = meetPoint.String
	view.PairGroupID = nullableUUID(pairGroupID)
	view.DeliveryRequestID = nullableUUID(requestID)
	view.DasherID = nullableUUID(dasherID)

	isBuyer := view.BuyerID.IsEqual(query.CallerID())
	isDasher := view.DasherID != nil && view.DasherID.IsEqual(query.CallerID())
	if !isBuyer && !isDasher {
		return OrderView{}, errs.NewPermissionDeniedError("read", "order "+query.OrderID().String())
	}
	if isBuyer {
		view.PinCode = kernel.PIN(pin.String)
	}

	return view, nil
}

func nullableUUID(id uuid.NullUUID) *kernel.UUID {
	if !id.Valid {
		return nil
	}
	kid, err := kernel.UUIDFromBytes(id.UUID[:])
	if err != nil {
		return nil
	}
	return &kid
}
