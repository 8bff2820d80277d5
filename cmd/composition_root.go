package cmd

import (
	"fmt"
	"log/slog"

	httpadapter "campusdash/internal/adapters/in/http"
	"campusdash/internal/adapters/out/amqp"
	"campusdash/internal/adapters/out/events"
	"campusdash/internal/adapters/out/postgres"
	"campusdash/internal/adapters/out/postgres/hallrepo"
	"campusdash/internal/core/application/usecases/commands"
	"campusdash/internal/core/application/usecases/queries"
	"campusdash/internal/core/domain/services"
	"campusdash/internal/core/ports"
	"campusdash/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	gormDB     *gorm.DB
	publisher  *amqp.Publisher
	listener   *jobs.QueueSnapshotListener
	uowFactory *postgres.GormUnitOfWorkFactory
	runner     commands.TxRunner
	calculator services.SettlementCalculator
	dispatcher services.PoolDispatcher
}

// NewCompositionRoot wires the unit of work so that committed events reach both the
// broker (when AMQP_URL is set) and the queue snapshot listener.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		calculator: services.NewSettlementCalculator(cfg.DefaultPlatformFee),
		dispatcher: services.NewPoolDispatcher(nil),
	}

	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewPublisher(amqp.URLDialer(cfg.AMQPURL), cfg.AMQPExchange, logger)
		if err != nil {
			return nil, fmt.Errorf("connect event broker: %w", err)
		}
		c.publisher = publisher
	} else {
		logger.Warn("AMQP_URL is empty, domain events stay in process")
	}

	// The runner resolves the factory per transaction, so the listener can be built on
	// the runner before the factory that publishes into it exists.
	c.runner = commands.NewTxRunner(FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.CreateGorm()
	}), cfg.TxMaxRetries)
	c.listener = jobs.NewQueueSnapshotListener(c.CreateRefreshQueueSnapshotsCommandHandler(), jobs.DefaultListenerBuffer, logger)
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, events.NewFanout(publisherOrNil(c.publisher), c.listener), logger)

	return c, nil
}

func (c *CompositionRoot) Close() error {
	if c.publisher == nil {
		return nil
	}
	return c.publisher.Close()
}

func (c *CompositionRoot) SnapshotListener() *jobs.QueueSnapshotListener {
	return c.listener
}

func (c *CompositionRoot) HallRepository() *hallrepo.GormHallRepository {
	return hallrepo.NewGormHallRepository(c.gormDB)
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.runner, c.dispatcher)
}

func (c *CompositionRoot) CreateQueueOrderCommandHandler() commands.QueueOrderCommandHandler {
	return commands.NewQueueOrderCommandHandler(c.runner, c.dispatcher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.runner)
}

func (c *CompositionRoot) CreateDeliveryRequestHandler() commands.DeliveryRequestHandler {
	return commands.NewDeliveryRequestHandler(c.runner, c.calculator, c.cfg.DeliveryRequestTTL)
}

func (c *CompositionRoot) CreateRunLifecycleHandler() commands.RunLifecycleHandler {
	return commands.NewRunLifecycleHandler(c.runner, c.calculator)
}

func (c *CompositionRoot) CreateUpdateDasherAvailabilityCommandHandler() commands.UpdateDasherAvailabilityCommandHandler {
	return commands.NewUpdateDasherAvailabilityCommandHandler(c.runner)
}

func (c *CompositionRoot) CreateRecordSettlementOutcomeCommandHandler() commands.RecordSettlementOutcomeCommandHandler {
	return commands.NewRecordSettlementOutcomeCommandHandler(c.runner)
}

func (c *CompositionRoot) CreateRefreshQueueSnapshotsCommandHandler() commands.RefreshQueueSnapshotsCommandHandler {
	return commands.NewRefreshQueueSnapshotsCommandHandler(c.runner)
}

func (c *CompositionRoot) CreateExpirySweepJob() *jobs.ExpirySweepJob {
	return jobs.NewExpirySweepJob(c.CreateDeliveryRequestHandler(), c.cfg.ExpirySweepSchedule, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateExpirySweepJob(),
		jobs.NewQueueSnapshotJob(c.CreateRefreshQueueSnapshotsCommandHandler(), c.cfg.QueueSnapshotSchedule, c.logger),
	)
}

func (c *CompositionRoot) CreateEcho() (*echo.Echo, error) {
	server := httpadapter.NewServer(httpadapter.Handlers{
		PlaceOrder:        c.CreatePlaceOrderCommandHandler(),
		QueueOrder:        c.CreateQueueOrderCommandHandler(),
		CancelOrder:       c.CreateCancelOrderCommandHandler(),
		DeliveryRequests:  c.CreateDeliveryRequestHandler(),
		Runs:              c.CreateRunLifecycleHandler(),
		Availability:      c.CreateUpdateDasherAvailabilityCommandHandler(),
		SettlementOutcome: c.CreateRecordSettlementOutcomeCommandHandler(),
		GetOrder:          queries.NewGetOrderQueryHandler(c.gormDB),
		ListOpenRuns:      queries.NewListOpenRunsQueryHandler(c.gormDB),
		ListDasherOffers:  queries.NewListDasherOffersQueryHandler(c.gormDB),
		QueueSnapshots:    queries.NewGetQueueSnapshotsQueryHandler(c.gormDB),
	})

	return httpadapter.NewEcho(server, httpadapter.RouterConfig{
		JWTSecret:  []byte(c.cfg.JWTSecret),
		WebhookKey: c.cfg.PaymentWebhookKey,
		Logger:     c.logger,
	})
}

// publisherOrNil keeps a nil *amqp.Publisher from becoming a non-nil interface.
func publisherOrNil(p *amqp.Publisher) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
