package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionKindDestructive(t *testing.T) {
	assert.False(t, ActionAssignVehicle.Destructive())
	assert.False(t, ActionChangeDriver.Destructive())
	assert.True(t, ActionRemoveVehicle.Destructive())
	assert.True(t, ActionCancelTrip.Destructive())
}

func TestActionDescriptorValidate(t *testing.T) {
	assert.NoError(t, ActionDescriptor{Kind: ActionCancelTrip, TripID: 1}.Validate())
	assert.NoError(t, ActionDescriptor{Kind: ActionAssignVehicle, TripID: 1, VehicleID: 7}.Validate())

	assert.ErrorIs(t, ActionDescriptor{Kind: ActionCancelTrip}.Validate(), ErrIncompleteDescriptor)
	assert.ErrorIs(t, ActionDescriptor{Kind: ActionAssignVehicle, TripID: 1}.Validate(), ErrIncompleteDescriptor)
	assert.ErrorIs(t, ActionDescriptor{Kind: ActionChangeDriver, TripID: 1}.Validate(), ErrIncompleteDescriptor)
	assert.ErrorIs(t, ActionDescriptor{Kind: "fly", TripID: 1}.Validate(), ErrUnknownAction)
}
