package commands_test

import (
	"context"
	"time"

	"campusdash/internal/core/application/usecases/commands"
	"campusdash/internal/core/domain/model/dasher"
	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/core/domain/model/pairgroup"
	"campusdash/internal/core/domain/model/payment"
	"campusdash/internal/core/domain/model/queue"
	"campusdash/internal/core/domain/model/run"
	"campusdash/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByPairGroup(ctx context.Context, groupID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListWaiting(ctx context.Context, key kernel.QueueKey) ([]*order.Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockPairGroupRepository struct{ mock.Mock }

func (m *MockPairGroupRepository) Add(ctx context.Context, g *pairgroup.PairGroup) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockPairGroupRepository) Update(ctx context.Context, g *pairgroup.PairGroup) error {
	return m.Called(ctx, g).Error(0)
}

func (m *MockPairGroupRepository) Get(ctx context.Context, id kernel.UUID) (*pairgroup.PairGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pairgroup.PairGroup), args.Error(1)
}

func (m *MockPairGroupRepository) FindOpen(ctx context.Context, key kernel.QueueKey) (*pairgroup.PairGroup, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pairgroup.PairGroup), args.Error(1)
}

type MockRunRepository struct{ mock.Mock }

func (m *MockRunRepository) Add(ctx context.Context, r *run.Run) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRunRepository) Update(ctx context.Context, r *run.Run) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRunRepository) Get(ctx context.Context, id kernel.UUID) (*run.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*run.Run), args.Error(1)
}

type MockDeliveryRequestRepository struct{ mock.Mock }

func (m *MockDeliveryRequestRepository) Add(ctx context.Context, r *deliveryrequest.DeliveryRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockDeliveryRequestRepository) Update(ctx context.Context, r *deliveryrequest.DeliveryRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockDeliveryRequestRepository) Get(ctx context.Context, id kernel.UUID) (*deliveryrequest.DeliveryRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deliveryrequest.DeliveryRequest), args.Error(1)
}

func (m *MockDeliveryRequestRepository) ListDueIDs(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Add(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindBySource(ctx context.Context, source payment.Source) (*payment.Payment, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

type MockDasherAvailabilityRepository struct{ mock.Mock }

func (m *MockDasherAvailabilityRepository) Save(ctx context.Context, a *dasher.Availability) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockDasherAvailabilityRepository) Get(ctx context.Context, id kernel.UUID) (*dasher.Availability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dasher.Availability), args.Error(1)
}

func (m *MockDasherAvailabilityRepository) ListOnline(ctx context.Context) ([]kernel.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockHallRepository struct{ mock.Mock }

func (m *MockHallRepository) BasePrice(ctx context.Context, key kernel.QueueKey) (decimal.Decimal, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockHallRepository) PlatformFeeOverride(ctx context.Context, hallID kernel.HallID) (*decimal.Decimal, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

type MockQueueSnapshotRepository struct{ mock.Mock }

func (m *MockQueueSnapshotRepository) Save(ctx context.Context, s queue.Snapshot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockQueueSnapshotRepository) ListKeys(ctx context.Context) ([]kernel.QueueKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.QueueKey), args.Error(1)
}

// MockUoW hands out the repository mocks. Accessors may be called any number of times.
type MockUoW struct {
	mock.Mock

	orders   *MockOrderRepository
	groups   *MockPairGroupRepository
	runs     *MockRunRepository
	requests *MockDeliveryRequestRepository
	payments *MockPaymentRepository
	dashers  *MockDasherAvailabilityRepository
	halls    *MockHallRepository
	queues   *MockQueueSnapshotRepository
}

func newMockUoW() *MockUoW {
	return &MockUoW{
		orders:   new(MockOrderRepository),
		groups:   new(MockPairGroupRepository),
		runs:     new(MockRunRepository),
		requests: new(MockDeliveryRequestRepository),
		payments: new(MockPaymentRepository),
		dashers:  new(MockDasherAvailabilityRepository),
		halls:    new(MockHallRepository),
		queues:   new(MockQueueSnapshotRepository),
	}
}

func (m *MockUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository         { return m.orders }
func (m *MockUoW) PairGroupRepository() ports.PairGroupRepository { return m.groups }
func (m *MockUoW) RunRepository() ports.RunRepository             { return m.runs }
func (m *MockUoW) DeliveryRequestRepository() ports.DeliveryRequestRepository {
	return m.requests
}
func (m *MockUoW) PaymentRepository() ports.PaymentRepository { return m.payments }
func (m *MockUoW) DasherAvailabilityRepository() ports.DasherAvailabilityRepository {
	return m.dashers
}
func (m *MockUoW) HallRepository() ports.HallRepository                   { return m.halls }
func (m *MockUoW) QueueSnapshotRepository() ports.QueueSnapshotRepository { return m.queues }

// expectTx expects one transaction that reaches commit with the given result.
func (m *MockUoW) expectTx(ctx context.Context, commitErr error) {
	m.On("Begin", ctx).Return(nil).Once()
	m.On("Commit", ctx).Return(commitErr).Once()
	m.On("Rollback", ctx).Return(nil).Once()
}

// expectAbortedTx expects one transaction whose body fails before commit.
func (m *MockUoW) expectAbortedTx(ctx context.Context) {
	m.On("Begin", ctx).Return(nil).Once()
	m.On("Rollback", ctx).Return(nil).Once()
}

func (m *MockUoW) assertExpectations(t mock.TestingT) {
	m.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.groups.AssertExpectations(t)
	m.runs.AssertExpectations(t)
	m.requests.AssertExpectations(t)
	m.payments.AssertExpectations(t)
	m.dashers.AssertExpectations(t)
	m.halls.AssertExpectations(t)
	m.queues.AssertExpectations(t)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// newRunner returns a runner whose every transaction uses uow.
func newRunner(uow *MockUoW) commands.TxRunner {
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)
	return commands.NewTxRunner(factory, 2)
}
