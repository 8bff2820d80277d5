package postgres_test

import (
	"context"
	"time"

	"campusdash/internal/adapters/out/postgres/hallrepo"
	"campusdash/internal/adapters/out/postgres/queuesnapshotrepo"
	"campusdash/internal/core/domain/model/dasher"
	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/queue"
	"campusdash/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

func (suite *UnitOfWorkIntegrationTestSuite) newRequest(requestedAt time.Time, ttl time.Duration) *deliveryrequest.DeliveryRequest {
	r, err := deliveryrequest.NewDeliveryRequest(deliveryrequest.Params{
		ID:           kernel.NewUUID(),
		OrderID:      kernel.NewUUID(),
		BuyerID:      kernel.NewUUID(),
		QueueKey:     suite.key,
		Candidates:   []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()},
		Items:        []deliveryrequest.Item{{Name: "burrito bowl", Quantity: 1}},
		MeetPoint:    "Library steps",
		Instructions: "blue jacket",
		RequestedAt:  requestedAt,
		TTL:          ttl,
	})
	suite.Require().NoError(err)
	return r
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDeliveryRequest_RoundTripsCandidatesAndItems() {
	ctx := context.Background()
	repo := suite.factory.Create().DeliveryRequestRepository()
	now := time.Now().UTC().Truncate(time.Microsecond)

	r := suite.newRequest(now, 10*time.Minute)
	suite.Require().NoError(repo.Add(ctx, r))

	loaded, err := repo.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(r.Candidates(), loaded.Candidates())
	suite.Equal(r.Items(), loaded.Items())
	suite.Equal("Library steps", loaded.MeetPoint())
	suite.Equal("blue jacket", loaded.Instructions())
	suite.True(r.ExpiresAt().Equal(loaded.ExpiresAt()))
	suite.Nil(loaded.AssignedDasherID())

	suite.Require().NoError(loaded.Accept(loaded.Candidates()[1], now))
	suite.Require().NoError(repo.Update(ctx, loaded))

	accepted, err := repo.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(deliveryrequest.Assigned, accepted.Status())
	suite.Equal(r.Candidates()[1], *accepted.AssignedDasherID())

	suite.Require().NoError(r.Withdraw())
	suite.ErrorIs(repo.Update(ctx, r), errs.ErrConcurrentModification)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDeliveryRequest_ListDueIDs() {
	ctx := context.Background()
	repo := suite.factory.Create().DeliveryRequestRepository()
	now := time.Now().UTC()

	overdue := suite.newRequest(now.Add(-20*time.Minute), 10*time.Minute)
	dueNow := suite.newRequest(now.Add(-10*time.Minute), 10*time.Minute)
	fresh := suite.newRequest(now, 10*time.Minute)
	withdrawn := suite.newRequest(now.Add(-20*time.Minute), 5*time.Minute)
	suite.Require().NoError(withdrawn.Withdraw())
	for _, r := range []*deliveryrequest.DeliveryRequest{fresh, dueNow, withdrawn, overdue} {
		suite.Require().NoError(repo.Add(ctx, r))
	}

	ids, err := repo.ListDueIDs(ctx, now, 10)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{overdue.ID(), dueNow.ID()}, ids)

	ids, err = repo.ListDueIDs(ctx, now, 1)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{overdue.ID()}, ids)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDasherAvailability_SaveAndListOnline() {
	ctx := context.Background()
	repo := suite.factory.Create().DasherAvailabilityRepository()
	now := time.Now().UTC()

	online, err := dasher.NewAvailability(kernel.NewUUID(), true, now)
	suite.Require().NoError(err)
	offline, err := dasher.NewAvailability(kernel.NewUUID(), false, now)
	suite.Require().NoError(err)
	suite.Require().NoError(repo.Save(ctx, online))
	suite.Require().NoError(repo.Save(ctx, offline))

	ids, err := repo.ListOnline(ctx)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{online.DasherID()}, ids)

	loaded, err := repo.Get(ctx, offline.DasherID())
	suite.Require().NoError(err)
	suite.True(loaded.Set(true, now.Add(time.Minute)))
	suite.Require().NoError(repo.Save(ctx, loaded))

	ids, err = repo.ListOnline(ctx)
	suite.Require().NoError(err)
	suite.ElementsMatch([]kernel.UUID{online.DasherID(), offline.DasherID()}, ids)

	_, err = repo.Get(ctx, kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDasherAvailability_SecondFirstSaveIsAConflict() {
	ctx := context.Background()
	repo := suite.factory.Create().DasherAvailabilityRepository()
	now := time.Now().UTC()
	dasherID := kernel.NewUUID()

	first, err := dasher.NewAvailability(dasherID, true, now)
	suite.Require().NoError(err)
	second, err := dasher.NewAvailability(dasherID, false, now)
	suite.Require().NoError(err)

	suite.Require().NoError(repo.Save(ctx, first))
	err = repo.Save(ctx, second)
	suite.ErrorIs(err, errs.ErrConcurrentModification)
	suite.NotErrorIs(err, errs.ErrFailedPrecondition)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestDeliveryRequest_DuplicateIDFailsPermanently() {
	ctx := context.Background()
	repo := suite.factory.Create().DeliveryRequestRepository()

	r := suite.newRequest(time.Now().UTC(), 10*time.Minute)
	suite.Require().NoError(repo.Add(ctx, r))

	again, err := deliveryrequest.NewDeliveryRequest(deliveryrequest.Params{
		ID:          r.ID(),
		OrderID:     kernel.NewUUID(),
		BuyerID:     kernel.NewUUID(),
		QueueKey:    suite.key,
		Candidates:  []kernel.UUID{kernel.NewUUID()},
		Items:       []deliveryrequest.Item{{Name: "pad thai", Quantity: 2}},
		MeetPoint:   "Gym entrance",
		RequestedAt: time.Now().UTC(),
		TTL:         10 * time.Minute,
	})
	suite.Require().NoError(err)

	err = repo.Add(ctx, again)
	suite.ErrorIs(err, errs.ErrFailedPrecondition)
	suite.NotErrorIs(err, errs.ErrConcurrentModification)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestHall_PricesAndFeeOverrides() {
	ctx := context.Background()
	halls := hallrepo.NewGormHallRepository(suite.database.DB)

	base, err := halls.BasePrice(ctx, suite.key)
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("17.50").Equal(base))

	suite.Require().NoError(halls.SetBasePrice(ctx, suite.key, decimal.RequireFromString("18.25")))
	base, err = halls.BasePrice(ctx, suite.key)
	suite.Require().NoError(err)
	suite.True(decimal.RequireFromString("18.25").Equal(base))

	_, err = halls.BasePrice(ctx, kernel.QueueKey{HallID: suite.key.HallID, WindowType: kernel.Breakfast})
	suite.ErrorIs(err, errs.ErrObjectNotFound)
	suite.Error(halls.SetBasePrice(ctx, suite.key, decimal.Zero))

	fee, err := halls.PlatformFeeOverride(ctx, suite.key.HallID)
	suite.Require().NoError(err)
	suite.Nil(fee)

	suite.Require().NoError(halls.SetPlatformFeeOverride(ctx, suite.key.HallID, decimal.RequireFromString("1.25")))
	fee, err = halls.PlatformFeeOverride(ctx, suite.key.HallID)
	suite.Require().NoError(err)
	suite.Require().NotNil(fee)
	suite.True(decimal.RequireFromString("1.25").Equal(*fee))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestQueueSnapshots_NewerWins() {
	ctx := context.Background()
	repo := queuesnapshotrepo.NewGormQueueSnapshotRepository(suite.database.DB)
	now := time.Now().UTC().Truncate(time.Second)

	suite.Require().NoError(repo.Save(ctx, queue.Snapshot{Key: suite.key, Depth: 3, AverageWait: time.Minute, ComputedAt: now}))
	suite.Require().NoError(repo.Save(ctx, queue.Snapshot{Key: suite.key, Depth: 9, AverageWait: time.Hour, ComputedAt: now.Add(-time.Minute)}))

	var dto queuesnapshotrepo.QueueSnapshotDTO
	suite.Require().NoError(suite.database.DB.Take(&dto, "hall_id = ?", suite.key.HallID.String()).Error)
	suite.Equal(3, dto.Depth)
	suite.Equal(int64(60), dto.AverageWaitSeconds)

	suite.Require().NoError(repo.Save(ctx, queue.Snapshot{Key: suite.key, Depth: 1, ComputedAt: now.Add(time.Minute)}))
	suite.Require().NoError(suite.database.DB.Take(&dto, "hall_id = ?", suite.key.HallID.String()).Error)
	suite.Equal(1, dto.Depth)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestQueueSnapshots_ListKeysFromOrders() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.newOrder()))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.newOrder()))

	keys, err := uow.QueueSnapshotRepository().ListKeys(ctx)
	suite.Require().NoError(err)
	suite.Equal([]kernel.QueueKey{suite.key}, keys)
}
