package commands_test

import (
	"testing"
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/run"

	"github.com/stretchr/testify/require"
)

const testPIN kernel.PIN = "482913"

var testKey = kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}

// runFixture is a two-member run together with its canonical orders.
type runFixture struct {
	run    *run.Run
	orders []*order.Order
	dasher kernel.UUID
}

func newRunFixture(t *testing.T, runStatus run.Status, orderStatus order.Status) runFixture {
	t.Helper()

	groupID := kernel.NewUUID()
	dasherID := kernel.NewUUID()
	created := time.Now().UTC().Add(-30 * time.Minute)

	var dasherRef *kernel.UUID
	if runStatus != run.ReadyToAssign {
		dasherRef = &dasherID
	}

	f := runFixture{dasher: dasherID}
	members := make([]run.Member, 0, 2)
	for range 2 {
		o, err := order.RestoreOrder(order.Snapshot{
			ID:          kernel.NewUUID(),
			BuyerID:     kernel.NewUUID(),
			HallID:      testKey.HallID,
			Window:      testKey.WindowType,
			Status:      orderStatus,
			PriceCents:  925,
			CreatedAt:   created,
			PairGroupID: &groupID,
			PinCode:     testPIN,
			DasherID:    dasherRef,
			Version:     3,
		})
		require.NoError(t, err)
		f.orders = append(f.orders, o)
		members = append(members, run.MemberOf(o))
	}

	snapshot := run.Snapshot{
		ID:                   kernel.NewUUID(),
		HallID:               testKey.HallID,
		Window:               testKey.WindowType,
		PairGroupID:          groupID,
		Status:               runStatus,
		DasherID:             dasherRef,
		EstimatedPayoutCents: 1850,
		DeliveryPin:          testPIN,
		CreatedAt:            created,
		Members:              members,
		Version:              2,
	}
	if runStatus == run.Delivered {
		delivered := time.Now().UTC()
		snapshot.DeliveredAt = &delivered
	}

	r, err := run.RestoreRun(snapshot)
	require.NoError(t, err)
	f.run = r
	return f
}

func (f runFixture) orderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(f.orders))
	for _, o := range f.orders {
		ids = append(ids, o.ID())
	}
	return ids
}

// requestFixture is a broadcast order and its request.
type requestFixture struct {
	order      *order.Order
	request    *deliveryrequest.DeliveryRequest
	candidates []kernel.UUID
}

func newRequestFixture(t *testing.T, status deliveryrequest.Status, expiresAt time.Time) requestFixture {
	t.Helper()

	orderID := kernel.NewUUID()
	requestID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	candidates := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}

	var assigned *kernel.UUID
	if status == deliveryrequest.Assigned || status == deliveryrequest.Completed {
		assigned = &candidates[0]
	}

	o, err := order.RestoreOrder(order.Snapshot{
		ID:                orderID,
		BuyerID:           buyerID,
		HallID:            testKey.HallID,
		Window:            testKey.WindowType,
		Status:            order.Requested,
		PriceCents:        925,
		CreatedAt:         expiresAt.Add(-deliveryrequest.DefaultTTL),
		PinCode:           testPIN,
		DeliveryRequestID: &requestID,
		MeetPoint:         "Library steps",
		DasherID:          assigned,
		Version:           1,
	})
	require.NoError(t, err)

	req, err := deliveryrequest.RestoreDeliveryRequest(deliveryrequest.Snapshot{
		ID:               requestID,
		OrderID:          orderID,
		BuyerID:          buyerID,
		HallID:           testKey.HallID,
		Window:           testKey.WindowType,
		Status:           status,
		RequestedAt:      expiresAt.Add(-deliveryrequest.DefaultTTL),
		ExpiresAt:        expiresAt,
		Candidates:       candidates,
		AssignedDasherID: assigned,
		Items:            []deliveryrequest.Item{{Name: "Burrito bowl", Quantity: 1}},
		MeetPoint:        "Library steps",
		Version:          1,
	})
	require.NoError(t, err)

	return requestFixture{order: o, request: req, candidates: candidates}
}
