package service

import (
	"context"
	"errors"
	"time"

	"fleet-dispatch/internal/domain/audit"
	"fleet-dispatch/internal/domain/trip"
	"fleet-dispatch/internal/ports"
)

// Start launches the background updater loop. Calling Start on a running
// service is a no-op.
func (service *statusService) Start() {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.running.Load() {
		return
	}

	service.stop = make(chan struct{})
	service.done = make(chan struct{})
	service.running.Store(true)

	go service.loop(service.stop, service.done)

	service.logger.Info(context.Background(), "updater_started", "Status updater loop started", map[string]any{
		"tick_interval": service.tickInterval.String(),
	})
}

// Stop halts the loop and waits for an in-flight tick to finish. Calling
// Stop on a stopped service is a no-op.
func (service *statusService) Stop() {
	service.mu.Lock()
	defer service.mu.Unlock()

	if !service.running.Load() {
		return
	}

	close(service.stop)
	<-service.done
	service.running.Store(false)

	service.logger.Info(context.Background(), "updater_stopped", "Status updater loop stopped", nil)
}

// Running reports whether the background loop is active.
func (service *statusService) Running() bool {
	return service.running.Load()
}

func (service *statusService) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(service.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			service.tick(context.Background())
		}
	}
}

// tick runs one scan unless another tick is already in flight, in which case
// it is skipped outright.
func (service *statusService) tick(ctx context.Context) {
	if !service.tickMu.TryLock() {
		service.logger.Debug(ctx, "tick_skipped", "Previous tick still running, skipping", nil)
		return
	}
	defer service.tickMu.Unlock()

	if _, err := service.runTick(ctx); err != nil {
		service.logger.Error(ctx, "tick_failed", "Status updater tick failed", err, nil)
	}
}

// runTick scans the current day's active trips and applies at most one
// timeline transition per trip. Per-trip failures are logged and skipped;
// they never abort the scan.
func (service *statusService) runTick(ctx context.Context) (int, error) {
	now := service.now().UTC()
	day := now.Truncate(24 * time.Hour)

	var active []*trip.Trip
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var listErr error
		active, listErr = service.tripRepo.FindActiveForDay(txCtx, day)
		return listErr
	})
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for _, t := range active {
		start, err := trip.ParseScheduleStart(t.ScheduleLabel, t.OperatingDay)
		if err != nil {
			service.logger.Error(service.logger.WithTripID(ctx, t.ID), "schedule_parse_failed",
				"Cannot derive start time from schedule label", err,
				map[string]any{"schedule_label": t.ScheduleLabel})
			continue
		}
		end := start.Add(service.tripDuration)

		next, due := trip.NextAutoStatus(t.Status, start, end, now)
		if !due {
			continue
		}

		tripCtx := service.logger.WithTripID(ctx, t.ID)
		err = service.uow.WithinTx(tripCtx, func(txCtx context.Context) error {
			return service.tripRepo.UpdateStatusAuto(txCtx, t.ID, t.Status, next, audit.SystemUserID)
		})
		if err != nil {
			if errors.Is(err, trip.ErrInvalidStatusTransition) {
				// someone else moved the trip between the scan and the lock
				service.logger.Debug(tripCtx, "transition_lost_race", "Trip changed since scan, skipping", nil)
			} else {
				service.logger.Error(tripCtx, "transition_failed", "Failed to apply automatic transition", err, map[string]any{
					"from": t.Status.String(),
					"to":   next.String(),
				})
			}
			continue
		}

		service.logger.Info(tripCtx, "status_transitioned", "Trip status advanced automatically", map[string]any{
			"from": t.Status.String(),
			"to":   next.String(),
		})
		transitioned++
	}

	return transitioned, nil
}

// ForceUpdate runs one tick immediately, waiting for any in-flight tick
// first, and reports how many trips transitioned.
func (service *statusService) ForceUpdate(ctx context.Context) (ports.ForceUpdateResult, error) {
	service.tickMu.Lock()
	defer service.tickMu.Unlock()

	n, err := service.runTick(ctx)
	if err != nil {
		return ports.ForceUpdateResult{}, err
	}

	return ports.ForceUpdateResult{Success: true, Transitioned: n}, nil
}
