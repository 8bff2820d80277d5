package guard_test

import (
	"errors"
	"testing"

	"campusdash/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstructorGuard(t *testing.T) {
	t.Run("creates_properly_constructed_guard", func(t *testing.T) {
		// When
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("command not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

// TestConstructorGuardUsageExample shows the guard embedded in a command-like value.
func TestConstructorGuardUsageExample(t *testing.T) {
	type claimCommand struct {
		runID string
		guard guard.ConstructorGuard
	}

	errNotConstructed := errors.New("claimCommand must be created via newClaimCommand")

	newClaimCommand := func(runID string) (claimCommand, error) {
		if runID == "" {
			return claimCommand{}, errors.New("run id is required")
		}
		return claimCommand{runID: runID, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_command_is_valid", func(t *testing.T) {
		cmd, err := newClaimCommand("run-1")

		require.NoError(t, err)
		require.NoError(t, cmd.guard.Validate(errNotConstructed))
		assert.Equal(t, "run-1", cmd.runID)
	})

	t.Run("literal_command_is_rejected", func(t *testing.T) {
		cmd := claimCommand{runID: "run-1"}

		assert.Equal(t, errNotConstructed, cmd.guard.Validate(errNotConstructed))
	})
}
