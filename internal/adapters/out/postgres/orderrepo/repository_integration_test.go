package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"campusdash/internal/adapters/out/postgres/orderrepo"
	"campusdash/internal/adapters/out/postgres/pgtest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(aggregate kernel.EventSource) {
	m.Called(aggregate)
}

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *orderrepo.GormOrderRepository
	tracker    *MockTracker
	now        time.Time
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())

	suite.tracker = new(MockTracker)
	suite.tracker.On("Track", mock.Anything).Return()
	suite.repository = orderrepo.NewGormOrderRepository(suite.database.DB, suite.tracker)
	suite.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(key kernel.QueueKey, createdAt time.Time) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), key.HallID, key.WindowType, 925, createdAt)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTrips() {
	ctx := context.Background()
	o := suite.newOrder(kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}, suite.now)

	suite.Require().NoError(suite.repository.Add(ctx, o))
	suite.Equal(1, o.Version())
	suite.tracker.AssertCalled(suite.T(), "Track", o)

	loaded, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.ID(), loaded.ID())
	suite.Equal(o.BuyerID(), loaded.BuyerID())
	suite.Equal(o.QueueKey(), loaded.QueueKey())
	suite.Equal(order.Requested, loaded.Status())
	suite.Equal(int64(925), loaded.PriceCents())
	suite.True(o.CreatedAt().Equal(loaded.CreatedAt()))
	suite.Nil(loaded.PairGroupID())
	suite.Equal(1, loaded.Version())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateID_FailsPermanently() {
	ctx := context.Background()
	o := suite.newOrder(kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}, suite.now)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	again, err := order.RestoreOrder(o.Snapshot())
	suite.Require().NoError(err)

	err = suite.repository.Add(ctx, again)
	suite.ErrorIs(err, errs.ErrFailedPrecondition)
	suite.NotErrorIs(err, errs.ErrConcurrentModification)
	suite.ErrorContains(err, "order "+o.ID().String()+" already exists")
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsPoolMembership() {
	ctx := context.Background()
	o := suite.newOrder(kernel.QueueKey{HallID: "north", WindowType: kernel.Dinner}, suite.now)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	groupID := kernel.NewUUID()
	suite.Require().NoError(o.JoinPool(groupID, "482913", false))
	suite.Require().NoError(suite.repository.Update(ctx, o))
	suite.Equal(2, o.Version())

	loaded, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Pooled, loaded.Status())
	suite.Require().NotNil(loaded.PairGroupID())
	suite.Equal(groupID, *loaded.PairGroupID())
	suite.Equal(kernel.PIN("482913"), loaded.PinCode())
	suite.Equal(2, loaded.Version())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleCopy_IsConcurrentModification() {
	ctx := context.Background()
	o := suite.newOrder(kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}, suite.now)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	first, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(first.CancelByBuyer())
	suite.Require().NoError(suite.repository.Update(ctx, first))

	suite.Require().NoError(second.JoinPool(kernel.NewUUID(), "111111", false))
	err = suite.repository.Update(ctx, second)
	suite.ErrorIs(err, errs.ErrConcurrentModification)

	loaded, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.CancelledBuyer, loaded.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_Missing_IsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetMany_KeepsRequestedOrder() {
	ctx := context.Background()
	key := kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}
	a := suite.newOrder(key, suite.now)
	b := suite.newOrder(key, suite.now.Add(time.Second))
	suite.Require().NoError(suite.repository.Add(ctx, a))
	suite.Require().NoError(suite.repository.Add(ctx, b))

	orders, err := suite.repository.GetMany(ctx, []kernel.UUID{b.ID(), a.ID()})
	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal(b.ID(), orders[0].ID())
	suite.Equal(a.ID(), orders[1].ID())

	_, err = suite.repository.GetMany(ctx, []kernel.UUID{a.ID(), kernel.NewUUID()})
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListWaiting_OnlyWaitingOrdersOfKey() {
	ctx := context.Background()
	lunch := kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}
	dinner := kernel.QueueKey{HallID: "north", WindowType: kernel.Dinner}

	older := suite.newOrder(lunch, suite.now.Add(-2*time.Minute))
	newer := suite.newOrder(lunch, suite.now.Add(-time.Minute))
	cancelled := suite.newOrder(lunch, suite.now)
	other := suite.newOrder(dinner, suite.now)
	for _, o := range []*order.Order{newer, older, cancelled, other} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}
	suite.Require().NoError(cancelled.CancelByBuyer())
	suite.Require().NoError(suite.repository.Update(ctx, cancelled))

	waiting, err := suite.repository.ListWaiting(ctx, lunch)
	suite.Require().NoError(err)
	suite.Require().Len(waiting, 2)
	suite.Equal(older.ID(), waiting[0].ID())
	suite.Equal(newer.ID(), waiting[1].ID())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListByPairGroup() {
	ctx := context.Background()
	key := kernel.QueueKey{HallID: "south", WindowType: kernel.Breakfast}
	groupID := kernel.NewUUID()

	a := suite.newOrder(key, suite.now)
	b := suite.newOrder(key, suite.now.Add(time.Second))
	loner := suite.newOrder(key, suite.now)
	for _, o := range []*order.Order{a, b, loner} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}
	suite.Require().NoError(a.JoinPool(groupID, "123456", false))
	suite.Require().NoError(b.JoinPool(groupID, "123456", true))
	suite.Require().NoError(suite.repository.Update(ctx, a))
	suite.Require().NoError(suite.repository.Update(ctx, b))

	members, err := suite.repository.ListByPairGroup(ctx, groupID)
	suite.Require().NoError(err)
	suite.Require().Len(members, 2)
	suite.Equal(a.ID(), members[0].ID())
	suite.Equal(b.ID(), members[1].ID())
}
