package commands

import (
	"context"
	"errors"
	"time"

	"campusdash/internal/core/domain/model/dasher"
	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/errs"
	"campusdash/internal/pkg/guard"
)

var ErrUpdateDasherAvailabilityCommandIsNotConstructed = errors.New(
	"UpdateDasherAvailabilityCommand must be created via NewUpdateDasherAvailabilityCommand constructor",
)

// UpdateDasherAvailabilityCommand mirrors a courier's online flag from the courier directory.
type UpdateDasherAvailabilityCommand struct {
	dasherID kernel.UUID
	online   bool

	guard guard.ConstructorGuard
}

func NewUpdateDasherAvailabilityCommand(dasherID kernel.UUID, online bool) (UpdateDasherAvailabilityCommand, error) {
	if err := dasherID.Validate(); err != nil {
		return UpdateDasherAvailabilityCommand{}, err
	}
	return UpdateDasherAvailabilityCommand{dasherID: dasherID, online: online, guard: guard.NewConstructorGuard()}, nil
}

func (c UpdateDasherAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDasherAvailabilityCommandIsNotConstructed)
}

func (c UpdateDasherAvailabilityCommand) DasherID() kernel.UUID { return c.dasherID }
func (c UpdateDasherAvailabilityCommand) Online() bool          { return c.online }

type UpdateDasherAvailabilityCommandHandler struct {
	runner TxRunner
}

func NewUpdateDasherAvailabilityCommandHandler(runner TxRunner) UpdateDasherAvailabilityCommandHandler {
	return UpdateDasherAvailabilityCommandHandler{runner: runner}
}

func (h UpdateDasherAvailabilityCommandHandler) Handle(ctx context.Context, command UpdateDasherAvailabilityCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return h.runner.Run(ctx, func(ctx context.Context, uow UoW) error {
		repo := uow.DasherAvailabilityRepository()
		now := time.Now().UTC()

		a, err := repo.Get(ctx, command.DasherID())
		switch {
		case errors.Is(err, errs.ErrObjectNotFound):
			a, err = dasher.NewAvailability(command.DasherID(), command.Online(), now)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			a.Set(command.Online(), now)
		}

		return repo.Save(ctx, a)
	})
}
