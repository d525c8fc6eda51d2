package service

import (
	"time"

	"fleet-dispatch/internal/general/config"
	"fleet-dispatch/internal/general/logger"
	"fleet-dispatch/internal/general/rabbitmq"
	"fleet-dispatch/internal/ports"
)

// dispatchService runs the command pipeline: classify, resolve, analyze
// consequences, gate behind confirmation, execute.
type dispatchService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	tripRepo    ports.TripRepository
	vehicleRepo ports.VehicleRepository
	driverRepo  ports.DriverRepository
	auditRepo   ports.AuditLogRepository
	classifier  ports.IntentClassifier
	sessions    *sessionStore
	pub         *rabbitmq.MQPublisher
	rabbitmq    *rabbitmq.Client

	bookingThreshold int
	now              func() time.Time
}

// NewDispatchService creates a new instance of the CommandService with the
// provided dependencies. pub and mq may be nil when the bus transport is not
// wired (tests); HTTP commands work regardless.
func NewDispatchService(
	logger *logger.Logger,
	cfg *config.Config,
	uow ports.UnitOfWork,
	tripRepo ports.TripRepository,
	vehicleRepo ports.VehicleRepository,
	driverRepo ports.DriverRepository,
	auditRepo ports.AuditLogRepository,
	classifier ports.IntentClassifier,
	pub *rabbitmq.MQPublisher,
	mq *rabbitmq.Client,
) ports.CommandService {
	return &dispatchService{
		logger:           logger,
		uow:              uow,
		tripRepo:         tripRepo,
		vehicleRepo:      vehicleRepo,
		driverRepo:       driverRepo,
		auditRepo:        auditRepo,
		classifier:       classifier,
		sessions:         newSessionStore(cfg.ConfirmationTTL(), time.Now),
		pub:              pub,
		rabbitmq:         mq,
		bookingThreshold: cfg.Dispatch.BookingThreshold,
		now:              time.Now,
	}
}
