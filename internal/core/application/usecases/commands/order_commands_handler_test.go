package commands_test

import (
	"testing"
	"time"

	"campusdash/internal/core/application/usecases/commands"
	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/pairgroup"
	"campusdash/internal/core/domain/model/run"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedPIN() (kernel.PIN, error) { return testPIN, nil }

func newOpenGroup(t *testing.T, filled int) *pairgroup.PairGroup {
	t.Helper()
	s := pairgroup.Snapshot{
		ID:          kernel.NewUUID(),
		HallID:      testKey.HallID,
		Window:      testKey.WindowType,
		TargetSize:  pairgroup.TargetSize,
		FilledCount: filled,
		Status:      pairgroup.Open,
		CreatedAt:   time.Now().UTC().Add(-time.Minute),
		Version:     1,
	}
	if filled > 0 {
		s.Pin = testPIN
	}
	g, err := pairgroup.RestorePairGroup(s)
	require.NoError(t, err)
	return g
}

func newPooledOrder(t *testing.T, groupID kernel.UUID) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(order.Snapshot{
		ID:          kernel.NewUUID(),
		BuyerID:     kernel.NewUUID(),
		HallID:      testKey.HallID,
		Window:      testKey.WindowType,
		Status:      order.Pooled,
		PriceCents:  925,
		CreatedAt:   time.Now().UTC().Add(-time.Minute),
		PairGroupID: &groupID,
		PinCode:     testPIN,
		Version:     1,
	})
	require.NoError(t, err)
	return o
}

func newRequestedOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), testKey.HallID, testKey.WindowType, 925, time.Now().UTC())
	require.NoError(t, err)
	return o
}

func TestPlaceOrderCommandHandler_Handle_WithoutPooling(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()

	uow := newMockUoW()
	uow.expectTx(ctx, nil)
	uow.halls.On("BasePrice", ctx, testKey).Return(decimal.RequireFromString("17.50"), nil).Once()
	uow.orders.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
		return o.ID().IsEqual(orderID) && o.PriceCents() == 925 && o.Status() == order.Requested
	})).Return(nil).Once()

	cmd, err := commands.NewPlaceOrderCommand(orderID, kernel.NewUUID(), "north", kernel.Lunch, false)
	require.NoError(t, err)

	handler := commands.NewPlaceOrderCommandHandler(newRunner(uow), services.NewPoolDispatcher(fixedPIN))
	require.NoError(t, handler.Handle(ctx, cmd))
	uow.assertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_DuplicateIDIsNotRetried(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()

	uow := newMockUoW()
	uow.expectAbortedTx(ctx)
	uow.halls.On("BasePrice", ctx, testKey).Return(decimal.RequireFromString("17.50"), nil).Once()
	uow.orders.On("Add", ctx, mock.AnythingOfType("*order.Order")).
		Return(errs.NewFailedPreconditionError("order %s already exists", orderID)).Once()

	cmd, err := commands.NewPlaceOrderCommand(orderID, kernel.NewUUID(), "north", kernel.Lunch, false)
	require.NoError(t, err)

	handler := commands.NewPlaceOrderCommandHandler(newRunner(uow), services.NewPoolDispatcher(fixedPIN))
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrFailedPrecondition)
	assert.NotErrorIs(t, err, errs.ErrConcurrentModification)
	assert.ErrorContains(t, err, "already exists")
	uow.AssertNumberOfCalls(t, "Begin", 1)
	uow.assertExpectations(t)
}

func TestPlaceOrderCommandHandler_Handle_OpensGroup(t *testing.T) {
	ctx := t.Context()

	uow := newMockUoW()
	uow.expectTx(ctx, nil)

	var placed *order.Order
	var opened *pairgroup.PairGroup
	mock.InOrder(
		uow.halls.On("BasePrice", ctx, testKey).Return(decimal.RequireFromString("17.50"), nil).Once(),
		uow.groups.On("FindOpen", ctx, testKey).Return(nil, errs.NewObjectNotFoundError("open pair group", testKey)).Once(),
		uow.groups.On("Add", ctx, mock.AnythingOfType("*pairgroup.PairGroup")).
			Run(func(args mock.Arguments) { opened = args.Get(1).(*pairgroup.PairGroup) }).
			Return(nil).Once(),
		uow.orders.On("Add", ctx, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) { placed = args.Get(1).(*order.Order) }).
			Return(nil).Once(),
	)

	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "north", kernel.Lunch, true)
	require.NoError(t, err)

	handler := commands.NewPlaceOrderCommandHandler(newRunner(uow), services.NewPoolDispatcher(fixedPIN))
	require.NoError(t, handler.Handle(ctx, cmd))

	require.NotNil(t, placed)
	require.NotNil(t, opened)
	assert.Equal(t, order.Pooled, placed.Status())
	assert.True(t, placed.PairGroupID().IsEqual(opened.ID()))
	assert.Equal(t, 1, opened.FilledCount())
	assert.Equal(t, testPIN, placed.PinCode())
	uow.runs.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	uow.assertExpectations(t)
}

func TestQueueOrderCommandHandler_Handle_FillsGroupAndCreatesRun(t *testing.T) {
	ctx := t.Context()
	group := newOpenGroup(t, 1)
	waiting := newPooledOrder(t, group.ID())
	o := newRequestedOrder(t)

	uow := newMockUoW()
	uow.expectTx(ctx, nil)

	var created *run.Run
	mock.InOrder(
		uow.orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.groups.On("FindOpen", ctx, testKey).Return(group, nil).Once(),
		uow.orders.On("ListByPairGroup", ctx, group.ID()).Return([]*order.Order{waiting}, nil).Once(),
		uow.groups.On("Update", ctx, group).Return(nil).Once(),
		uow.orders.On("Update", ctx, waiting).Return(nil).Once(),
		uow.runs.On("Add", ctx, mock.AnythingOfType("*run.Run")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*run.Run) }).
			Return(nil).Once(),
		uow.orders.On("Update", ctx, o).Return(nil).Once(),
	)

	cmd, err := commands.NewQueueOrderCommand(o.ID(), o.BuyerID())
	require.NoError(t, err)

	handler := commands.NewQueueOrderCommandHandler(newRunner(uow), services.NewPoolDispatcher(fixedPIN))
	require.NoError(t, handler.Handle(ctx, cmd))

	assert.Equal(t, pairgroup.Filled, group.Status())
	assert.Equal(t, order.ReadyToAssign, o.Status())
	assert.Equal(t, order.ReadyToAssign, waiting.Status())

	require.NotNil(t, created)
	assert.Equal(t, run.ReadyToAssign, created.Status())
	assert.Equal(t, int64(1850), created.EstimatedPayoutCents())
	assert.Equal(t, testPIN, created.DeliveryPin())
	assert.ElementsMatch(t, []kernel.UUID{waiting.ID(), o.ID()}, created.MemberOrderIDs())
	uow.assertExpectations(t)
}

func TestQueueOrderCommandHandler_Handle_NotOwner(t *testing.T) {
	ctx := t.Context()
	o := newRequestedOrder(t)

	uow := newMockUoW()
	uow.expectAbortedTx(ctx)
	uow.orders.On("Get", ctx, o.ID()).Return(o, nil).Once()

	cmd, err := commands.NewQueueOrderCommand(o.ID(), kernel.NewUUID())
	require.NoError(t, err)

	handler := commands.NewQueueOrderCommandHandler(newRunner(uow), services.NewPoolDispatcher(fixedPIN))
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrPermissionDenied)
	uow.assertExpectations(t)
}

func TestCancelOrderCommandHandler_Handle(t *testing.T) {
	t.Run("pooled order gives its seat back", func(t *testing.T) {
		ctx := t.Context()
		group := newOpenGroup(t, 1)
		o := newPooledOrder(t, group.ID())

		uow := newMockUoW()
		uow.expectTx(ctx, nil)
		mock.InOrder(
			uow.orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
			uow.groups.On("Get", ctx, group.ID()).Return(group, nil).Once(),
			uow.groups.On("Update", ctx, group).Return(nil).Once(),
			uow.orders.On("Update", ctx, o).Return(nil).Once(),
		)

		cmd, err := commands.NewCancelOrderCommand(o.ID(), o.BuyerID())
		require.NoError(t, err)

		require.NoError(t, commands.NewCancelOrderCommandHandler(newRunner(uow)).Handle(ctx, cmd))
		assert.Equal(t, order.CancelledBuyer, o.Status())
		assert.Equal(t, 0, group.FilledCount())
		uow.assertExpectations(t)
	})

	t.Run("broadcast order withdraws its open request", func(t *testing.T) {
		ctx := t.Context()
		f := newRequestFixture(t, deliveryrequest.Open, time.Now().UTC().Add(5*time.Minute))

		uow := newMockUoW()
		uow.expectTx(ctx, nil)
		uow.orders.On("Get", ctx, f.order.ID()).Return(f.order, nil).Once()
		uow.requests.On("Get", ctx, f.request.ID()).Return(f.request, nil).Once()
		uow.requests.On("Update", ctx, f.request).Return(nil).Once()
		uow.orders.On("Update", ctx, f.order).Return(nil).Once()

		cmd, err := commands.NewCancelOrderCommand(f.order.ID(), f.order.BuyerID())
		require.NoError(t, err)

		require.NoError(t, commands.NewCancelOrderCommandHandler(newRunner(uow)).Handle(ctx, cmd))
		assert.Equal(t, order.CancelledBuyer, f.order.Status())
		assert.Equal(t, deliveryrequest.Expired, f.request.Status())
		uow.assertExpectations(t)
	})

	t.Run("claimed order cannot be cancelled", func(t *testing.T) {
		ctx := t.Context()
		f := newRunFixture(t, run.Claimed, order.Claimed)
		o := f.orders[0]

		uow := newMockUoW()
		uow.expectAbortedTx(ctx)
		uow.orders.On("Get", ctx, o.ID()).Return(o, nil).Once()

		cmd, err := commands.NewCancelOrderCommand(o.ID(), o.BuyerID())
		require.NoError(t, err)

		err = commands.NewCancelOrderCommandHandler(newRunner(uow)).Handle(ctx, cmd)
		require.ErrorIs(t, err, errs.ErrFailedPrecondition)
		assert.Equal(t, order.Claimed, o.Status())
		uow.assertExpectations(t)
	})
}

func TestNewPlaceOrderCommand_InvalidInput(t *testing.T) {
	_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "", kernel.Lunch, false)
	require.Error(t, err)

	_, err = commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), "north", kernel.WindowType("brunch"), false)
	require.Error(t, err)

	_, err = commands.NewPlaceOrderCommand(kernel.UUID{}, kernel.NewUUID(), "north", kernel.Lunch, false)
	require.Error(t, err)
}
