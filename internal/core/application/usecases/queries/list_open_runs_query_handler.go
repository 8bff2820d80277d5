package queries

import (
	"context"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/run"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListOpenRunsQueryHandler struct {
	db *gorm.DB
}

func NewListOpenRunsQueryHandler(db *gorm.DB) ListOpenRunsQueryHandler {
	return ListOpenRunsQueryHandler{db: db}
}

func (h ListOpenRunsQueryHandler) Handle(ctx context.Context, query ListOpenRunsQuery) ([]OpenRunView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			hall_id,
			window_type,
			estimated_payout_cents,
			jsonb_array_length(members),
			created_at
		FROM runs
		WHERE status = @status
			AND (@hall = '' OR hall_id = @hall)
		ORDER BY created_at, id
		LIMIT @limit
	`, map[string]any{
		"status": int(run.ReadyToAssign),
		"hall":   query.HallID().String(),
		"limit":  query.Limit(),
	}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]OpenRunView, 0)
	for rows.Next() {
		var view OpenRunView
		var id uuid.UUID
		var hall, window string

		err = rows.Scan(&id, &hall, &window, &view.EstimatedPayoutCents, &view.MemberCount, &view.CreatedAt)
		if err != nil {
			return nil, err
		}

		runID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		view.ID = runID
		view.HallID = kernel.HallID(hall)
		view.WindowType = kernel.WindowType(window)
		runs = append(runs, view)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}
