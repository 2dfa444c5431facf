package service

import (
	"context"
	"errors"
	"time"

	"hvac/internal/hvac"
	"hvac/internal/logger"
	"hvac/internal/models"
)

type ticker interface {
	Tick(ctx context.Context, now hvac.Seconds) (models.ControllerState, error)
}

// ClockService converts wall time since Run started into whole controller
// seconds.
type ClockService struct {
	control ticker
	log     *logger.Logger
	now     func() time.Time
}

func NewClockService(control ticker, log *logger.Logger) *ClockService {
	return &ClockService{control: control, log: log, now: time.Now}
}

// Run ticks at the given interval until ctx is canceled.
func (s *ClockService) Run(ctx context.Context, tick time.Duration) {
	start := s.now()
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.step(ctx, start)
		}
	}
}

func (s *ClockService) step(ctx context.Context, start time.Time) {
	elapsed := s.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	_, err := s.control.Tick(ctx, hvac.Seconds(elapsed/time.Second))
	switch {
	case err == nil:
	case errors.Is(err, hvac.ErrClockWentBackwards):
		// already recorded by Control; a manual tick ran ahead of wall time
		s.log.Debugw("clock_tick_behind", "elapsed", elapsed)
	case errors.Is(err, context.Canceled):
	default:
		s.log.Errorw("clock_tick_failed", "err", err)
	}
}
