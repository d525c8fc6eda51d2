package classifier

import (
	"context"
	"testing"

	"fleet-dispatch/internal/domain/command"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	t.Run("assign vehicle with registration and trip id", func(t *testing.T) {
		rec, err := c.Classify(ctx, "assign vehicle MH-12-3456 to trip 5")
		require.NoError(t, err)
		assert.Equal(t, "assign_vehicle", rec.Action)
		require.NotNil(t, rec.TargetTripID)
		assert.Equal(t, int64(5), *rec.TargetTripID)
		assert.Equal(t, "MH-12-3456", rec.Parameters["registration"])
	})

	t.Run("remove vehicle", func(t *testing.T) {
		rec, err := c.Classify(ctx, "remove the vehicle from trip 12")
		require.NoError(t, err)
		assert.Equal(t, "remove_vehicle", rec.Action)
		require.NotNil(t, rec.TargetTripID)
		assert.Equal(t, int64(12), *rec.TargetTripID)
	})

	t.Run("change driver extracts the name", func(t *testing.T) {
		rec, err := c.Classify(ctx, "change driver to Ramesh on trip 3")
		require.NoError(t, err)
		assert.Equal(t, "change_driver", rec.Action)
		assert.Equal(t, "Ramesh", rec.Parameters["driver_name"])
	})

	t.Run("combined vehicle and driver command picks the driver change", func(t *testing.T) {
		// intents are single-action; the driver clause wins and the
		// vehicle registration is not extracted
		rec, err := c.Classify(ctx, "assign vehicle MH-12-3456 and driver Ramesh to trip 5")
		require.NoError(t, err)
		assert.Equal(t, "change_driver", rec.Action)
		assert.Equal(t, "Ramesh", rec.Parameters["driver_name"])
		assert.NotContains(t, rec.Parameters, "registration")
	})

	t.Run("cancel with reason", func(t *testing.T) {
		rec, err := c.Classify(ctx, "cancel trip 9 because the road is closed")
		require.NoError(t, err)
		assert.Equal(t, "cancel_trip", rec.Action)
		require.NotNil(t, rec.TargetTripID)
		assert.Equal(t, int64(9), *rec.TargetTripID)
		assert.Equal(t, "the road is closed", rec.Parameters["reason"])
	})

	t.Run("path and route references", func(t *testing.T) {
		rec, err := c.Classify(ctx, "remove vehicle on path 4")
		require.NoError(t, err)
		require.NotNil(t, rec.TargetPathID)
		assert.Equal(t, int64(4), *rec.TargetPathID)
		assert.Nil(t, rec.TargetTripID)

		rec, err = c.Classify(ctx, "cancel the morning run on route 7")
		require.NoError(t, err)
		require.NotNil(t, rec.TargetRouteID)
		assert.Equal(t, int64(7), *rec.TargetRouteID)
	})

	t.Run("unclassifiable text is rejected", func(t *testing.T) {
		_, err := c.Classify(ctx, "what is the weather like")
		assert.ErrorIs(t, err, command.ErrUnknownAction)
	})
}

func TestTrimStopwords(t *testing.T) {
	assert.Equal(t, "Ramesh", trimStopwords("Ramesh to"))
	assert.Equal(t, "Anil Kumar", trimStopwords("Anil Kumar"))
	assert.Equal(t, "", trimStopwords("to trip"))
}
