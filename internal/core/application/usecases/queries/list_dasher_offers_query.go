package queries

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/guard"
)

var ErrListDasherOffersQueryIsNotConstructed = errors.New(
	"ListDasherOffersQuery must be created via NewListDasherOffersQuery constructor",
)

// ListDasherOffersQuery lists the open delivery requests a courier is still a candidate
// for and that have not expired at now.
type ListDasherOffersQuery struct {
	dasherID kernel.UUID
	now      time.Time
	guard    guard.ConstructorGuard
}

func NewListDasherOffersQuery(dasherID kernel.UUID, now time.Time) (ListDasherOffersQuery, error) {
	if err := dasherID.Validate(); err != nil {
		return ListDasherOffersQuery{}, err
	}
	return ListDasherOffersQuery{dasherID: dasherID, now: now, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDasherOffersQuery) Validate() error {
	return q.guard.Validate(ErrListDasherOffersQueryIsNotConstructed)
}

func (q ListDasherOffersQuery) DasherID() kernel.UUID { return q.dasherID }
func (q ListDasherOffersQuery) Now() time.Time        { return q.now }

type DasherOfferView struct {
	RequestID    kernel.UUID
	OrderID      kernel.UUID
	HallID       kernel.HallID
	WindowType   kernel.WindowType
	Items        []deliveryrequest.Item
	MeetPoint    string
	Instructions string
	ExpiresAt    time.Time
}
