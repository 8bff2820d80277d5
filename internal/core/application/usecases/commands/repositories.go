// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// Every handler validates its command and runs its body as one transaction through
// TxRunner, re-reading and re-checking all preconditions on each attempt.
package commands

import (
	"context"

	"campusdash/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	PairGroupRepoFactory interface {
		PairGroupRepository() ports.PairGroupRepository
	}

	RunRepoFactory interface {
		RunRepository() ports.RunRepository
	}

	DeliveryRequestRepoFactory interface {
		DeliveryRequestRepository() ports.DeliveryRequestRepository
	}

	PaymentRepoFactory interface {
		PaymentRepository() ports.PaymentRepository
	}

	DasherAvailabilityRepoFactory interface {
		DasherAvailabilityRepository() ports.DasherAvailabilityRepository
	}

	HallRepoFactory interface {
		HallRepository() ports.HallRepository
	}

	QueueSnapshotRepoFactory interface {
		QueueSnapshotRepository() ports.QueueSnapshotRepository
	}

	// UoW spans every document kind, since pooling, run settlement and broadcast
	// matching each write several of them in one transaction.
	//
	// Example:
	//   err := runner.Run(ctx, func(ctx context.Context, uow UoW) error {
	//       o, err := uow.OrderRepository().Get(ctx, id)
	//       ...
	//       return uow.OrderRepository().Update(ctx, o)
	//   })
	UoW interface {
		TxManager
		OrderRepoFactory
		PairGroupRepoFactory
		RunRepoFactory
		DeliveryRequestRepoFactory
		PaymentRepoFactory
		DasherAvailabilityRepoFactory
		HallRepoFactory
		QueueSnapshotRepoFactory
	}

	// UoWFactory creates new unit of work instances, one per transaction attempt.
	UoWFactory interface {
		Create() UoW
	}
)
