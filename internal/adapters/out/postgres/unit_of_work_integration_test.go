package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgresadapter "campusdash/internal/adapters/out/postgres"
	"campusdash/internal/adapters/out/postgres/hallrepo"
	"campusdash/internal/adapters/out/postgres/pgtest"
	"campusdash/internal/adapters/out/postgres/runrepo"
	"campusdash/internal/core/application/usecases/commands"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/pairgroup"
	"campusdash/internal/core/domain/model/payment"
	"campusdash/internal/core/domain/model/run"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kernel.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...kernel.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

type uowFactoryFunc func() commands.UoW

func (f uowFactoryFunc) Create() commands.UoW { return f() }

type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	database  *pgtest.Database
	publisher *recordingPublisher
	factory   *postgresadapter.GormUnitOfWorkFactory
	runner    commands.TxRunner
	key       kernel.QueueKey
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.key = kernel.QueueKey{HallID: "north", WindowType: kernel.Lunch}
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())

	suite.publisher = &recordingPublisher{}
	suite.factory = postgresadapter.NewGormUnitOfWorkFactory(suite.database.DB, suite.publisher, nil)
	suite.runner = commands.NewTxRunner(uowFactoryFunc(func() commands.UoW {
		return suite.factory.CreateGorm()
	}), 10)

	halls := hallrepo.NewGormHallRepository(suite.database.DB)
	suite.Require().NoError(halls.SetBasePrice(context.Background(), suite.key, decimal.RequireFromString("17.50")))
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder() *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), suite.key.HallID, suite.key.WindowType, 925,
		time.Now().UTC())
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) placePooled(buyerID kernel.UUID) error {
	handler := commands.NewPlaceOrderCommandHandler(suite.runner, services.NewPoolDispatcher(nil))
	cmd, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), buyerID, suite.key.HallID.String(), suite.key.WindowType, true)
	suite.Require().NoError(err)
	return handler.Handle(context.Background(), cmd)
}

func (suite *UnitOfWorkIntegrationTestSuite) runIDs() []kernel.UUID {
	var raw []uuid.UUID
	suite.Require().NoError(suite.database.DB.Model(&runrepo.RunDTO{}).Order("created_at").Pluck("id", &raw).Error)

	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		suite.Require().NoError(err)
		ids = append(ids, id)
	}
	return ids
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PublishesTrackedEvents() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	o := suite.newOrder()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal([]string{"order.placed"}, suite.publisher.names())
	suite.Empty(o.DomainEvents())
	suite.ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsWritesAndEvents() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	o := suite.newOrder()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Empty(suite.publisher.names())
	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestSecondOpenGroupForKey_IsConcurrentModification() {
	ctx := context.Background()
	repo := suite.factory.Create().PairGroupRepository()

	first, err := pairgroup.NewPairGroup(kernel.NewUUID(), suite.key, time.Now().UTC())
	suite.Require().NoError(err)
	second, err := pairgroup.NewPairGroup(kernel.NewUUID(), suite.key, time.Now().UTC())
	suite.Require().NoError(err)

	suite.Require().NoError(repo.Add(ctx, first))
	suite.ErrorIs(repo.Add(ctx, second), errs.ErrConcurrentModification)

	found, err := repo.FindOpen(ctx, suite.key)
	suite.Require().NoError(err)
	suite.Equal(first.ID(), found.ID())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestSecondPaymentForSource_IsConcurrentModification() {
	ctx := context.Background()
	repo := suite.factory.Create().PaymentRepository()
	source := payment.RunSource(kernel.NewUUID())
	breakdown := payment.Breakdown{AmountCents: 1850, PlatformFeeCents: 50, ProcessingFeeCents: 84}

	first, err := payment.NewCapturedPayment(kernel.NewUUID(), source, kernel.NewUUID(),
		[]kernel.UUID{kernel.NewUUID()}, breakdown, time.Now().UTC())
	suite.Require().NoError(err)
	second, err := payment.NewCapturedPayment(kernel.NewUUID(), source, kernel.NewUUID(),
		[]kernel.UUID{kernel.NewUUID()}, breakdown, time.Now().UTC())
	suite.Require().NoError(err)

	suite.Require().NoError(repo.Add(ctx, first))
	suite.ErrorIs(repo.Add(ctx, second), errs.ErrConcurrentModification)

	found, err := repo.FindBySource(ctx, source)
	suite.Require().NoError(err)
	suite.Equal(first.ID(), found.ID())
	suite.Equal(int64(1716), found.PayoutCents())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentPooling_NeverOverfillsGroups() {
	const buyers = 6

	var wg sync.WaitGroup
	errCh := make(chan error, buyers)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- suite.placePooled(kernel.NewUUID())
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		suite.Require().NoError(err)
	}

	ctx := context.Background()
	uow := suite.factory.Create()
	runIDs := suite.runIDs()
	suite.Require().Len(runIDs, buyers/2)

	for _, id := range runIDs {
		r, err := uow.RunRepository().Get(ctx, id)
		suite.Require().NoError(err)
		suite.Len(r.Members(), pairgroup.TargetSize)
		suite.Equal(int64(1850), r.EstimatedPayoutCents())

		members, err := uow.OrderRepository().ListByPairGroup(ctx, r.PairGroupID())
		suite.Require().NoError(err)
		suite.Len(members, pairgroup.TargetSize)
		for _, m := range members {
			suite.Equal(order.ReadyToAssign, m.Status())
			suite.Equal(r.DeliveryPin(), m.PinCode())
		}
	}

	_, err := uow.PairGroupRepository().FindOpen(ctx, suite.key)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentClaims_ExactlyOneWins() {
	suite.Require().NoError(suite.placePooled(kernel.NewUUID()))
	suite.Require().NoError(suite.placePooled(kernel.NewUUID()))
	runIDs := suite.runIDs()
	suite.Require().Len(runIDs, 1)

	handler := commands.NewRunLifecycleHandler(suite.runner, services.NewSettlementCalculator(decimal.RequireFromString("0.50")))
	dashers := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}

	var wg sync.WaitGroup
	results := make([]error, len(dashers))
	for i, dasherID := range dashers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, err := commands.NewClaimRunCommand(runIDs[0], dasherID)
			if err != nil {
				results[i] = err
				return
			}
			results[i] = handler.HandleClaim(context.Background(), cmd)
		}()
	}
	wg.Wait()

	winners := 0
	var winner kernel.UUID
	for i, err := range results {
		if err == nil {
			winners++
			winner = dashers[i]
			continue
		}
		suite.ErrorIs(err, errs.ErrFailedPrecondition)
	}
	suite.Require().Equal(1, winners)

	ctx := context.Background()
	uow := suite.factory.Create()
	r, err := uow.RunRepository().Get(ctx, runIDs[0])
	suite.Require().NoError(err)
	suite.Equal(run.Claimed, r.Status())
	suite.Require().NotNil(r.DasherID())
	suite.Equal(winner, *r.DasherID())

	members, err := uow.OrderRepository().ListByPairGroup(ctx, r.PairGroupID())
	suite.Require().NoError(err)
	for _, m := range members {
		suite.Equal(order.Claimed, m.Status())
		suite.Equal(winner, *m.DasherID())
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestPooledRun_DeliveredAndSettled() {
	ctx := context.Background()
	suite.Require().NoError(suite.placePooled(kernel.NewUUID()))
	suite.Require().NoError(suite.placePooled(kernel.NewUUID()))
	runID := suite.runIDs()[0]
	dasherID := kernel.NewUUID()

	handler := commands.NewRunLifecycleHandler(suite.runner, services.NewSettlementCalculator(decimal.RequireFromString("0.50")))

	claim, err := commands.NewClaimRunCommand(runID, dasherID)
	suite.Require().NoError(err)
	suite.Require().NoError(handler.HandleClaim(ctx, claim))

	pickup, err := commands.NewMarkPickedUpCommand(runID, dasherID)
	suite.Require().NoError(err)
	suite.Require().NoError(handler.HandlePickedUp(ctx, pickup))

	r, err := suite.factory.Create().RunRepository().Get(ctx, runID)
	suite.Require().NoError(err)

	deliver, err := commands.NewMarkDeliveredCommand(runID, dasherID, r.DeliveryPin().String())
	suite.Require().NoError(err)
	suite.Require().NoError(handler.HandleDelivered(ctx, deliver))

	again, err := commands.NewMarkDeliveredCommand(runID, dasherID, r.DeliveryPin().String())
	suite.Require().NoError(err)
	suite.ErrorIs(handler.HandleDelivered(ctx, again), errs.ErrFailedPrecondition)

	p, err := suite.factory.Create().PaymentRepository().FindBySource(ctx, payment.RunSource(runID))
	suite.Require().NoError(err)
	suite.Equal(int64(1850), p.AmountCents())
	suite.Equal(int64(84), p.Breakdown().ProcessingFeeCents)
	suite.Equal(int64(50), p.Breakdown().PlatformFeeCents)
	suite.Equal(int64(1716), p.PayoutCents())
	suite.Equal(payment.Captured, p.Status())

	suite.Contains(suite.publisher.names(), "settlement.captured")
}
