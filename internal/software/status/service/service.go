package service

import (
	"sync"
	"sync/atomic"
	"time"

	"fleet-dispatch/internal/general/config"
	"fleet-dispatch/internal/general/logger"
	"fleet-dispatch/internal/ports"
)

// statusService owns the autonomous trip-status state machine: a ticker-driven
// background loop plus the manual and forced entry points, all funneling
// through the same tick function.
type statusService struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	tripRepo ports.TripRepository

	tickInterval time.Duration
	tripDuration time.Duration
	now          func() time.Time

	mu      sync.Mutex // guards Start/Stop
	stop    chan struct{}
	done    chan struct{}
	running atomic.Bool

	// tickMu serializes ticks; a tick that would overlap a running one is
	// skipped, not queued
	tickMu sync.Mutex
}

// NewStatusService creates a new instance of the StatusService with the
// provided dependencies.
func NewStatusService(
	logger *logger.Logger,
	cfg *config.Config,
	uow ports.UnitOfWork,
	tripRepo ports.TripRepository,
) ports.StatusService {
	return &statusService{
		logger:       logger,
		uow:          uow,
		tripRepo:     tripRepo,
		tickInterval: cfg.TickInterval(),
		tripDuration: cfg.TripDuration(),
		now:          time.Now,
	}
}
