package commands

import (
	"errors"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var (
	ErrClaimRunCommandIsNotConstructed = errors.New(
		"ClaimRunCommand must be created via NewClaimRunCommand constructor",
	)
	ErrMarkPickedUpCommandIsNotConstructed = errors.New(
		"MarkPickedUpCommand must be created via NewMarkPickedUpCommand constructor",
	)
	ErrMarkDeliveredCommandIsNotConstructed = errors.New(
		"MarkDeliveredCommand must be created via NewMarkDeliveredCommand constructor",
	)
	ErrCancelRunCommandIsNotConstructed = errors.New(
		"CancelRunCommand must be created via NewCancelRunCommand constructor",
	)
)

// runAction identifies a run and the courier acting on it.
type runAction struct {
	runID    kernel.UUID
	dasherID kernel.UUID
}

func newRunAction(runID, dasherID kernel.UUID) (runAction, error) {
	if err := errors.Join(runID.Validate(), dasherID.Validate()); err != nil {
		return runAction{}, err
	}
	return runAction{runID: runID, dasherID: dasherID}, nil
}

func (a runAction) RunID() kernel.UUID    { return a.runID }
func (a runAction) DasherID() kernel.UUID { return a.dasherID }

// ClaimRunCommand asks for a ready run on behalf of a courier. Only the first claim commits.
type ClaimRunCommand struct {
	runAction
	guard guard.ConstructorGuard
}

func NewClaimRunCommand(runID, dasherID kernel.UUID) (ClaimRunCommand, error) {
	a, err := newRunAction(runID, dasherID)
	if err != nil {
		return ClaimRunCommand{}, err
	}
	return ClaimRunCommand{runAction: a, guard: guard.NewConstructorGuard()}, nil
}

func (c ClaimRunCommand) Validate() error {
	return c.guard.Validate(ErrClaimRunCommandIsNotConstructed)
}

// MarkPickedUpCommand records that the assigned courier collected the food.
type MarkPickedUpCommand struct {
	runAction
	guard guard.ConstructorGuard
}

func NewMarkPickedUpCommand(runID, dasherID kernel.UUID) (MarkPickedUpCommand, error) {
	a, err := newRunAction(runID, dasherID)
	if err != nil {
		return MarkPickedUpCommand{}, err
	}
	return MarkPickedUpCommand{runAction: a, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkPickedUpCommand) Validate() error {
	return c.guard.Validate(ErrMarkPickedUpCommandIsNotConstructed)
}

// MarkDeliveredCommand confirms the handoff with the PINs read out by the buyers.
// pins may hold several codes separated by commas or whitespace.
type MarkDeliveredCommand struct {
	runAction
	pins  string
	guard guard.ConstructorGuard
}

func NewMarkDeliveredCommand(runID, dasherID kernel.UUID, pins string) (MarkDeliveredCommand, error) {
	a, err := newRunAction(runID, dasherID)
	if err != nil {
		return MarkDeliveredCommand{}, err
	}
	if pins == "" {
		return MarkDeliveredCommand{}, errs.NewValueIsRequiredError("pin")
	}
	return MarkDeliveredCommand{runAction: a, pins: pins, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrMarkDeliveredCommandIsNotConstructed)
}

func (c MarkDeliveredCommand) Pins() string { return c.pins }

// CancelRunCommand releases a claimed run; its member orders end CancelledDasher.
type CancelRunCommand struct {
	runAction
	guard guard.ConstructorGuard
}

func NewCancelRunCommand(runID, dasherID kernel.UUID) (CancelRunCommand, error) {
	a, err := newRunAction(runID, dasherID)
	if err != nil {
		return CancelRunCommand{}, err
	}
	return CancelRunCommand{runAction: a, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelRunCommand) Validate() error {
	return c.guard.Validate(ErrCancelRunCommandIsNotConstructed)
}
