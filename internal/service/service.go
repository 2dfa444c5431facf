package service

import (
	"context"
	"time"

	"hvac/internal/hvac"
	"hvac/internal/logger"
	"hvac/internal/metrics"
	"hvac/internal/models"
	"hvac/internal/notify"
	"hvac/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control drives the single controller instance. Every call returns the
// snapshot after the call took effect.
type Control interface {
	Boot(ctx context.Context) (models.ControllerState, error)
	Heat(ctx context.Context) (models.ControllerState, error)
	Cool(ctx context.Context) (models.ControllerState, error)
	Idle(ctx context.Context) (models.ControllerState, error)
	SetFanAuto(ctx context.Context, auto bool) (models.ControllerState, error)
	Tick(ctx context.Context, now hvac.Seconds) (models.ControllerState, error)
}

// Monitoring exposes the last persisted snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.ControllerState, error)
}

// EventLog exposes the append-only event log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ControllerEvent, error)
}

// Clock feeds wall time into Control until ctx is canceled.
type Clock interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	Control
	Monitoring
	EventLog
	Clock
	Authorization
}

// Deps carries everything the services need besides storage.
type Deps struct {
	HVAC      hvac.Config
	Auth      AuthConfig
	Publisher notify.Publisher
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	control := NewControlService(deps.HVAC, repos.StateRepo, repos.EventRepo, deps.Publisher, deps.Metrics, log)
	return &Service{
		Control:       control,
		Monitoring:    NewMonitoringService(repos.StateRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Clock:         NewClockService(control, log),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}
