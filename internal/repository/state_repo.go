package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hvac/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	controllerStateRowID = 1

	upsertStateSQL = `
		INSERT INTO controller_state (id, service, fan, request, fan_auto, clock_s,
			heat_lockout_s, cool_lockout_s, fan_lockout_s, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			service=excluded.service,
			fan=excluded.fan,
			request=excluded.request,
			fan_auto=excluded.fan_auto,
			clock_s=excluded.clock_s,
			heat_lockout_s=excluded.heat_lockout_s,
			cool_lockout_s=excluded.cool_lockout_s,
			fan_lockout_s=excluded.fan_lockout_s,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, service, fan, request, fan_auto, clock_s,
			heat_lockout_s, cool_lockout_s, fan_lockout_s, updated_at
		FROM controller_state WHERE id=?
	`
)

// Save upserts the controller_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state models.ControllerState) error {
	ts := state.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		controllerStateRowID,
		state.Service,
		state.Fan,
		state.Request,
		state.FanAuto,
		int64(state.ClockS),
		int64(state.HeatLockoutS),
		int64(state.CoolLockoutS),
		int64(state.FanLockoutS),
		ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save controller state: %w", err)
	}
	return nil
}

// Load fetches the controller_state row. A missing row yields the zero value.
func (r *StateSQLite) Load(ctx context.Context) (models.ControllerState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, controllerStateRowID)

	var (
		s                        models.ControllerState
		clock, heat, cool, fanLk int64
	)
	if err := row.Scan(
		&s.ID,
		&s.Service,
		&s.Fan,
		&s.Request,
		&s.FanAuto,
		&clock,
		&heat,
		&cool,
		&fanLk,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ControllerState{}, nil
		}
		return models.ControllerState{}, fmt.Errorf("load controller state: %w", err)
	}

	s.ClockS = uint64(clock)
	s.HeatLockoutS = uint64(heat)
	s.CoolLockoutS = uint64(cool)
	s.FanLockoutS = uint64(fanLk)
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
