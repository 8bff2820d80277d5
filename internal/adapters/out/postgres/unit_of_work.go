// Package postgres provides the GORM-based Unit of Work spanning every repository.
//
// A unit of work is one transaction attempt. Repositories obtained from it write through
// the open transaction and register the aggregates they persisted, so their domain events
// can be published once the transaction has committed.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package postgres

import (
	"context"
	"log/slog"

	"campusdash/internal/adapters/out/postgres/dasherrepo"
	"campusdash/internal/adapters/out/postgres/deliveryrequestrepo"
	"campusdash/internal/adapters/out/postgres/hallrepo"
	"campusdash/internal/adapters/out/postgres/orderrepo"
	"campusdash/internal/adapters/out/postgres/pairgrouprepo"
	"campusdash/internal/adapters/out/postgres/paymentrepo"
	"campusdash/internal/adapters/out/postgres/queuesnapshotrepo"
	"campusdash/internal/adapters/out/postgres/runrepo"
	"campusdash/internal/adapters/out/postgres/storage"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates one UnitOfWork per transaction attempt.
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewGormUnitOfWorkFactory returns a factory whose units publish committed events to
// publisher. A nil publisher drops them.
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher, logger *slog.Logger) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormUnitOfWorkFactory{
		db:        db,
		publisher: publisher,
		logger:    logger.With("component", "unit_of_work"),
	}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.CreateGorm()
}

// CreateGorm is Create without the interface conversion.
func (f *GormUnitOfWorkFactory) CreateGorm() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:        f.db,
		publisher: f.publisher,
		logger:    f.logger,
	}
}

// GormUnitOfWork coordinates one database transaction and the aggregates written in it.
type GormUnitOfWork struct {
	db        *gorm.DB
	tx        *gorm.DB
	publisher ports.EventPublisher
	logger    *slog.Logger
	tracked   []kernel.EventSource
}

var _ storage.Tracker = (*GormUnitOfWork)(nil)

// Begin opens the transaction. Calling it again while a transaction is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return storage.Classify(tx.Error)
	}
	uow.tx = tx
	uow.tracked = nil
	return nil
}

// Commit makes the writes permanent and then publishes the events of every tracked
// aggregate. Publishing failures are logged; the writes stay committed.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.tracked = nil
		return storage.Classify(err)
	}

	uow.publishTracked(ctx)
	return nil
}

// Rollback discards the transaction and the tracked aggregates.
// It returns gorm.ErrInvalidTransaction when nothing is open, which lets it be deferred
// unconditionally after Commit.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.tracked = nil
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// Track registers an aggregate written in this unit of work.
func (uow *GormUnitOfWork) Track(aggregate kernel.EventSource) {
	for _, t := range uow.tracked {
		if t == aggregate {
			return
		}
	}
	uow.tracked = append(uow.tracked, aggregate)
}

func (uow *GormUnitOfWork) publishTracked(ctx context.Context) {
	tracked := uow.tracked
	uow.tracked = nil

	var events []kernel.DomainEvent
	for _, aggregate := range tracked {
		events = append(events, aggregate.DomainEvents()...)
		aggregate.ClearDomainEvents()
	}
	if len(events) == 0 || uow.publisher == nil {
		return
	}
	if err := uow.publisher.Publish(ctx, events...); err != nil {
		uow.logger.ErrorContext(ctx, "failed to publish domain events", "count", len(events), "error", err)
	}
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) PairGroupRepository() ports.PairGroupRepository {
	return pairgrouprepo.NewGormPairGroupRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) RunRepository() ports.RunRepository {
	return runrepo.NewGormRunRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DeliveryRequestRepository() ports.DeliveryRequestRepository {
	return deliveryrequestrepo.NewGormDeliveryRequestRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) PaymentRepository() ports.PaymentRepository {
	return paymentrepo.NewGormPaymentRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DasherAvailabilityRepository() ports.DasherAvailabilityRepository {
	return dasherrepo.NewGormAvailabilityRepository(uow.conn())
}

func (uow *GormUnitOfWork) HallRepository() ports.HallRepository {
	return hallrepo.NewGormHallRepository(uow.conn())
}

func (uow *GormUnitOfWork) QueueSnapshotRepository() ports.QueueSnapshotRepository {
	return queuesnapshotrepo.NewGormQueueSnapshotRepository(uow.conn())
}
