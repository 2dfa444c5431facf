package service

import (
	"context"
	"time"

	"hvac/internal/models"
	"hvac/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
}

func NewMonitoringService(stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo}
}

// GetState returns the latest persisted snapshot, or an idle baseline when
// nothing has been stored yet.
func (s *MonitoringService) GetState(ctx context.Context) (models.ControllerState, error) {
	state, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.ControllerState{}, err
	}
	if state.ID == 0 {
		return baselineState(), nil
	}
	state.UpdatedAt = toUTC(state.UpdatedAt)
	return state, nil
}

// baselineState mirrors a freshly booted controller.
func baselineState() models.ControllerState {
	return models.ControllerState{
		ID:        stateRowID,
		Service:   "NONE",
		Fan:       false,
		Request:   "IDLE",
		FanAuto:   true,
		UpdatedAt: time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
