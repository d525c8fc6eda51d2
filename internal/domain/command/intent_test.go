package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestParseIntent(t *testing.T) {
	t.Run("assign vehicle requires registration", func(t *testing.T) {
		_, err := ParseIntent(IntentRecord{Action: "assign_vehicle", TargetTripID: ptr(5)})
		assert.ErrorIs(t, err, ErrMissingParam)

		in, err := ParseIntent(IntentRecord{
			Action:       "assign_vehicle",
			TargetTripID: ptr(5),
			Parameters:   map[string]string{"registration": " MH-12-3456 "},
		})
		require.NoError(t, err)
		av, ok := in.(AssignVehicleIntent)
		require.True(t, ok)
		assert.Equal(t, "MH-12-3456", av.Registration)
		assert.Equal(t, int64(5), *av.Target().TripID)
	})

	t.Run("change driver requires driver_name", func(t *testing.T) {
		_, err := ParseIntent(IntentRecord{Action: "change_driver", TargetTripID: ptr(3)})
		assert.ErrorIs(t, err, ErrMissingParam)

		in, err := ParseIntent(IntentRecord{
			Action:       "change_driver",
			TargetTripID: ptr(3),
			Parameters:   map[string]string{"driver_name": "Ramesh"},
		})
		require.NoError(t, err)
		cd, ok := in.(ChangeDriverIntent)
		require.True(t, ok)
		assert.Equal(t, "Ramesh", cd.DriverName)
	})

	t.Run("remove vehicle needs no parameters", func(t *testing.T) {
		in, err := ParseIntent(IntentRecord{Action: "remove_vehicle", TargetPathID: ptr(2)})
		require.NoError(t, err)
		assert.Equal(t, ActionRemoveVehicle, in.Kind())
	})

	t.Run("cancel reason is optional", func(t *testing.T) {
		in, err := ParseIntent(IntentRecord{
			Action:       "cancel_trip",
			TargetTripID: ptr(9),
			Parameters:   map[string]string{"reason": "driver unavailable"},
		})
		require.NoError(t, err)
		ct, ok := in.(CancelTripIntent)
		require.True(t, ok)
		assert.Equal(t, "driver unavailable", ct.Reason)
	})

	t.Run("action names are normalized", func(t *testing.T) {
		in, err := ParseIntent(IntentRecord{Action: " Cancel_Trip ", TargetTripID: ptr(1)})
		require.NoError(t, err)
		assert.Equal(t, ActionCancelTrip, in.Kind())
	})

	t.Run("unknown actions are rejected", func(t *testing.T) {
		_, err := ParseIntent(IntentRecord{Action: "teleport_trip", TargetTripID: ptr(1)})
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
}

func TestTargetRefEmpty(t *testing.T) {
	assert.True(t, TargetRef{}.Empty())
	assert.False(t, TargetRef{RouteID: ptr(4)}.Empty())
}
