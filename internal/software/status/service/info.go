package service

import (
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/ports"
)

// Info reports the updater's runtime configuration and state.
func (service *statusService) Info() ports.StatusInfo {
	statuses := trip.AllStatuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}

	return ports.StatusInfo{
		Running:       service.running.Load(),
		TickInterval:  service.tickInterval.String(),
		TripDuration:  service.tripDuration.String(),
		ValidStatuses: names,
	}
}
