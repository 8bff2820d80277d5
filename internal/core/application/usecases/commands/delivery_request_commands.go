package commands

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/deliveryrequest"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var (
	ErrCreateDeliveryRequestCommandIsNotConstructed = errors.New(
		"CreateDeliveryRequestCommand must be created via NewCreateDeliveryRequestCommand constructor",
	)
	ErrRespondToDeliveryRequestCommandIsNotConstructed = errors.New(
		"RespondToDeliveryRequestCommand must be created via NewRespondToDeliveryRequestCommand constructor",
	)
	ErrCompleteDeliveryRequestCommandIsNotConstructed = errors.New(
		"CompleteDeliveryRequestCommand must be created via NewCompleteDeliveryRequestCommand constructor",
	)
	ErrExpireDeliveryRequestsCommandIsNotConstructed = errors.New(
		"ExpireDeliveryRequestsCommand must be created via NewExpireDeliveryRequestsCommand constructor",
	)
)

// CreateDeliveryRequestCommand broadcasts one order of the caller to every online courier.
type CreateDeliveryRequestCommand struct {
	requestID    kernel.UUID
	orderID      kernel.UUID
	buyerID      kernel.UUID
	key          kernel.QueueKey
	items        []deliveryrequest.Item
	meetPoint    string
	instructions string

	guard guard.ConstructorGuard
}

func NewCreateDeliveryRequestCommand(
	requestID, orderID, buyerID kernel.UUID,
	key kernel.QueueKey,
	items []deliveryrequest.Item,
	meetPoint, instructions string,
) (CreateDeliveryRequestCommand, error) {
	if err := errors.Join(
		requestID.Validate(),
		orderID.Validate(),
		buyerID.Validate(),
		key.WindowType.Validate(),
	); err != nil {
		return CreateDeliveryRequestCommand{}, err
	}
	if key.HallID == "" {
		return CreateDeliveryRequestCommand{}, errs.NewValueIsRequiredError("hallId")
	}
	if meetPoint == "" {
		return CreateDeliveryRequestCommand{}, errs.NewValueIsRequiredError("meetPoint")
	}
	if len(items) == 0 {
		return CreateDeliveryRequestCommand{}, errs.NewValueIsRequiredError("items")
	}

	return CreateDeliveryRequestCommand{
		requestID:    requestID,
		orderID:      orderID,
		buyerID:      buyerID,
		key:          key,
		items:        append([]deliveryrequest.Item(nil), items...),
		meetPoint:    meetPoint,
		instructions: instructions,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c CreateDeliveryRequestCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryRequestCommandIsNotConstructed)
}

func (c CreateDeliveryRequestCommand) RequestID() kernel.UUID        { return c.requestID }
func (c CreateDeliveryRequestCommand) OrderID() kernel.UUID          { return c.orderID }
func (c CreateDeliveryRequestCommand) BuyerID() kernel.UUID          { return c.buyerID }
func (c CreateDeliveryRequestCommand) QueueKey() kernel.QueueKey     { return c.key }
func (c CreateDeliveryRequestCommand) Items() []deliveryrequest.Item { return c.items }
func (c CreateDeliveryRequestCommand) MeetPoint() string             { return c.meetPoint }
func (c CreateDeliveryRequestCommand) Instructions() string          { return c.instructions }

// RespondToDeliveryRequestCommand is a candidate courier's accept or decline.
type RespondToDeliveryRequestCommand struct {
	requestID kernel.UUID
	dasherID  kernel.UUID
	accept    bool

	guard guard.ConstructorGuard
}

func NewRespondToDeliveryRequestCommand(requestID, dasherID kernel.UUID, accept bool) (RespondToDeliveryRequestCommand, error) {
	if err := errors.Join(requestID.Validate(), dasherID.Validate()); err != nil {
		return RespondToDeliveryRequestCommand{}, err
	}
	return RespondToDeliveryRequestCommand{
		requestID: requestID,
		dasherID:  dasherID,
		accept:    accept,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RespondToDeliveryRequestCommand) Validate() error {
	return c.guard.Validate(ErrRespondToDeliveryRequestCommandIsNotConstructed)
}

func (c RespondToDeliveryRequestCommand) RequestID() kernel.UUID { return c.requestID }
func (c RespondToDeliveryRequestCommand) DasherID() kernel.UUID  { return c.dasherID }
func (c RespondToDeliveryRequestCommand) Accept() bool           { return c.accept }

// CompleteDeliveryRequestCommand confirms the handoff of a broadcast order with its PIN.
type CompleteDeliveryRequestCommand struct {
	requestID kernel.UUID
	dasherID  kernel.UUID
	pin       string

	guard guard.ConstructorGuard
}

func NewCompleteDeliveryRequestCommand(requestID, dasherID kernel.UUID, pin string) (CompleteDeliveryRequestCommand, error) {
	if err := errors.Join(requestID.Validate(), dasherID.Validate()); err != nil {
		return CompleteDeliveryRequestCommand{}, err
	}
	if pin == "" {
		return CompleteDeliveryRequestCommand{}, errs.NewValueIsRequiredError("pin")
	}
	return CompleteDeliveryRequestCommand{
		requestID: requestID,
		dasherID:  dasherID,
		pin:       pin,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteDeliveryRequestCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryRequestCommandIsNotConstructed)
}

func (c CompleteDeliveryRequestCommand) RequestID() kernel.UUID { return c.requestID }
func (c CompleteDeliveryRequestCommand) DasherID() kernel.UUID  { return c.dasherID }
func (c CompleteDeliveryRequestCommand) PIN() string            { return c.pin }

// ExpireDeliveryRequestsCommand sweeps open requests whose expiry is not after now.
type ExpireDeliveryRequestsCommand struct {
	now       time.Time
	batchSize int

	guard guard.ConstructorGuard
}

// DefaultSweepBatchSize bounds the requests expired by one sweep.
const DefaultSweepBatchSize = 200

func NewExpireDeliveryRequestsCommand(now time.Time, batchSize int) (ExpireDeliveryRequestsCommand, error) {
	if now.IsZero() {
		return ExpireDeliveryRequestsCommand{}, errs.NewValueIsRequiredError("now")
	}
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return ExpireDeliveryRequestsCommand{now: now, batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireDeliveryRequestsCommand) Validate() error {
	return c.guard.Validate(ErrExpireDeliveryRequestsCommandIsNotConstructed)
}

func (c ExpireDeliveryRequestsCommand) Now() time.Time { return c.now }
func (c ExpireDeliveryRequestsCommand) BatchSize() int { return c.batchSize }
