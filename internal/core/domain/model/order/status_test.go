package order_test

import (
	"testing"

	"campusdash/internal/core/domain/model/order"
	"campusdash/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStatus_Validate(t *testing.T) {
	t.Run("should accept every named status", func(t *testing.T) {
		for s := order.Requested; s <= order.Disputed; s++ {
			require.NoError(t, s.Validate(), s.String())
		}
	})

	t.Run("should reject Unknown and out of range values", func(t *testing.T) {
		for _, s := range []order.Status{order.Unknown, order.Status(-1), order.Status(13), order.Status(100)} {
			err := s.Validate()

			require.Error(t, err)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
		}
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "readyToAssign", order.ReadyToAssign.String())
	assert.Equal(t, "cancelledBuyer", order.CancelledBuyer.String())
	assert.Equal(t, "unknown", order.Status(42).String())

	raw, err := order.InProgress.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "inProgress", string(raw))
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := []order.Status{order.CancelledBuyer, order.CancelledDasher, order.Expired, order.Disputed, order.Closed}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s.String())
	}
	for _, s := range []order.Status{order.Requested, order.Pooled, order.ReadyToAssign, order.Claimed, order.InProgress, order.Delivered, order.Paid} {
		assert.False(t, s.IsTerminal(), s.String())
	}
	assert.False(t, order.Unknown.IsTerminal())
}

func TestStatus_TransitionTo(t *testing.T) {
	legal := map[order.Status][]order.Status{
		order.Requested:     {order.Pooled, order.CancelledBuyer},
		order.Pooled:        {order.ReadyToAssign, order.CancelledBuyer},
		order.ReadyToAssign: {order.Claimed, order.CancelledDasher, order.Expired},
		order.Claimed:       {order.InProgress, order.CancelledDasher},
		order.InProgress:    {order.Delivered, order.Disputed},
		order.Delivered:     {order.Paid},
		order.Paid:          {order.Closed},
	}

	t.Run("should allow exactly the listed edges", func(t *testing.T) {
		for from := order.Unknown; from <= order.Disputed; from++ {
			for to := order.Unknown; to <= order.Disputed; to++ {
				want := false
				for _, next := range legal[from] {
					if next == to {
						want = true
					}
				}

				got, err := from.TransitionTo(to)
				if want {
					require.NoError(t, err, "%s -> %s", from, to)
					assert.Equal(t, to, got)
					continue
				}
				require.ErrorIs(t, err, errs.ErrFailedPrecondition, "%s -> %s", from, to)
				assert.Equal(t, from, got)
			}
		}
	})

	t.Run("terminal statuses never move", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			from := rapid.SampledFrom([]order.Status{
				order.CancelledBuyer, order.CancelledDasher, order.Expired, order.Disputed, order.Closed,
			}).Draw(t, "from")
			to := order.Status(rapid.IntRange(0, 12).Draw(t, "to"))

			if from.CanTransitionTo(to) {
				t.Fatalf("terminal %s may move to %s", from, to)
			}
		})
	})
}

func TestStatus_UnmarshalText(t *testing.T) {
	for s := order.Requested; s <= order.Disputed; s++ {
		raw, err := s.MarshalText()
		require.NoError(t, err)

		var decoded order.Status
		require.NoError(t, decoded.UnmarshalText(raw))
		assert.Equal(t, s, decoded)
	}

	var decoded order.Status
	require.ErrorIs(t, decoded.UnmarshalText([]byte("unknown")), errs.ErrValueIsInvalid)
	require.ErrorIs(t, decoded.UnmarshalText([]byte("shipped")), errs.ErrValueIsInvalid)
}
