package service

import (
	"context"
	"time"

	"building_energy/internal/logger"
	"building_energy/internal/models"
	"building_energy/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Buildings exposes the controller lifecycle: create, adjust by price signal, dispose.
type Buildings interface {
	Create(ctx context.Context, name string) (models.BuildingState, error)
	Adjust(ctx context.Context, id string, sig models.Signal) (models.BuildingState, error)
	Delete(ctx context.Context, id string) error
}

// Monitoring exposes read-only controller snapshots.
type Monitoring interface {
	GetState(ctx context.Context, id string) (models.BuildingState, error)
	ListStates(ctx context.Context) ([]models.BuildingState, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ControlEvent, error)
}

// Simulator runs the background demand loop that feeds price signals.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Options carries the knobs the services take from configuration.
type Options struct {
	SigningKey   string
	TokenTTL     time.Duration
	UsageLimitKW float64
	Sampler      Sampler // nil means a randomly seeded sampler
}

// Service aggregates all sub-services.
type Service struct {
	Buildings
	Monitoring
	EventLog
	Simulator
	Authorization
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options, log *logger.Logger) *Service {
	buildings := NewBuildingService(repos.Tx, repos.Buildings, repos.Events)
	monitoring := NewMonitoringService(repos.Buildings)

	sampler := opts.Sampler
	if sampler == nil {
		sampler = NewRandomSampler()
	}

	return &Service{
		Buildings:     buildings,
		Monitoring:    monitoring,
		EventLog:      NewEventLogService(repos.Events),
		Simulator:     NewSimulatorService(buildings, monitoring, sampler, opts.UsageLimitKW, log),
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
	}
}
