package queries

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/guard"
)

var ErrListOpenRunsQueryIsNotConstructed = errors.New(
	"ListOpenRunsQuery must be created via NewListOpenRunsQuery constructor",
)

// ListOpenRunsQuery is the courier board: runs still waiting for a claim, oldest first.
// The delivery PIN is never part of the board.
type ListOpenRunsQuery struct {
	hallID kernel.HallID
	limit  int
	guard  guard.ConstructorGuard
}

// DefaultOpenRunsLimit caps the board when the caller asks for no limit.
const DefaultOpenRunsLimit = 50

// NewListOpenRunsQuery accepts an empty hallID for every hall.
func NewListOpenRunsQuery(hallID kernel.HallID, limit int) ListOpenRunsQuery {
	if limit <= 0 {
		limit = DefaultOpenRunsLimit
	}
	return ListOpenRunsQuery{hallID: hallID, limit: limit, guard: guard.NewConstructorGuard()}
}

func (q ListOpenRunsQuery) Validate() error {
	return q.guard.Validate(ErrListOpenRunsQueryIsNotConstructed)
}

func (q ListOpenRunsQuery) HallID() kernel.HallID { return q.hallID }
func (q ListOpenRunsQuery) Limit() int            { return q.limit }

type OpenRunView struct {
	ID                   kernel.UUID
	HallID               kernel.HallID
	WindowType           kernel.WindowType
	EstimatedPayoutCents int64
	MemberCount          int
	CreatedAt            time.Time
}
