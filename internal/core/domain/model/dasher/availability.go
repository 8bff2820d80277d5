// Package dasher holds the courier availability flag used to build the candidate set
// of broadcast delivery requests.
package dasher

import (
	"errors"
	"time"

	"campusdash/internal/core/domain/model/kernel"
	"campusdash/internal/pkg/guard"
)

var ErrAvailabilityIsNotConstructed = errors.New("Availability must be created via NewAvailability constructor")

// Availability is the online/offline flag of one courier.
type Availability struct {
	kernel.Versioned

	dasherID  kernel.UUID
	online    bool
	updatedAt time.Time
	guard     guard.ConstructorGuard
}

func NewAvailability(dasherID kernel.UUID, online bool, updatedAt time.Time) (*Availability, error) {
	if err := dasherID.Validate(); err != nil {
		return nil, err
	}
	return &Availability{
		dasherID:  dasherID,
		online:    online,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func RestoreAvailability(dasherID kernel.UUID, online bool, updatedAt time.Time, version int) (*Availability, error) {
	a, err := NewAvailability(dasherID, online, updatedAt)
	if err != nil {
		return nil, err
	}
	a.Versioned = kernel.RestoreVersioned(version)
	return a, nil
}

func (a *Availability) Validate() error {
	if a == nil {
		return ErrAvailabilityIsNotConstructed
	}
	return a.guard.Validate(ErrAvailabilityIsNotConstructed)
}

func (a *Availability) DasherID() kernel.UUID { return a.dasherID }
func (a *Availability) IsOnline() bool        { return a.online }
func (a *Availability) UpdatedAt() time.Time  { return a.updatedAt }

// Set changes the flag. It reports whether anything changed.
func (a *Availability) Set(online bool, at time.Time) bool {
	a.updatedAt = at
	if a.online == online {
		return false
	}
	a.online = online
	return true
}
