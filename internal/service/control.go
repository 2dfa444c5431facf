package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"hvac/internal/hvac"
	"hvac/internal/logger"
	"hvac/internal/metrics"
	"hvac/internal/models"
	"hvac/internal/notify"
	"hvac/internal/repository"

	"github.com/google/uuid"
)

// stateRowID is the only row of controller_state.
const stateRowID = 1

// ControlService serializes access to the controller and records what each
// call changed.
type ControlService struct {
	mu   sync.Mutex
	cfg  hvac.Config
	ctrl *hvac.Controller
	out  hvac.Output

	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	pub       notify.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger

	wallNow func() time.Time
}

func NewControlService(
	cfg hvac.Config,
	stateRepo repository.StateRepo,
	eventRepo repository.EventRepo,
	pub notify.Publisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *ControlService {
	if pub == nil {
		pub = notify.Multi(nil)
	}
	return &ControlService{
		cfg:       cfg,
		ctrl:      hvac.New(cfg),
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		pub:       pub,
		metrics:   m,
		log:       log,
		wallNow:   time.Now,
	}
}

// Boot logs the start of a fresh controller and stores its idle snapshot.
// Any snapshot left by a previous process is overwritten, never restored.
func (s *ControlService) Boot(ctx context.Context) (models.ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.snapshot()
	ev := s.event(models.EventBoot, "controller booted", map[string]any{"config": s.cfg})
	if err := s.eventRepo.Append(ctx, ev); err != nil {
		return st, fmt.Errorf("append boot event: %w", err)
	}
	s.log.Infow("hvac_boot", "heat", s.cfg.Heat, "cool", s.cfg.Cool, "fan", s.cfg.Fan)
	return st, s.commit(ctx, st, true)
}

func (s *ControlService) Heat(ctx context.Context) (models.ControllerState, error) {
	return s.request(ctx, hvac.RequestHeat, s.ctrl.Heat)
}

func (s *ControlService) Cool(ctx context.Context) (models.ControllerState, error) {
	return s.request(ctx, hvac.RequestCool, s.ctrl.Cool)
}

func (s *ControlService) Idle(ctx context.Context) (models.ControllerState, error) {
	return s.request(ctx, hvac.RequestIdle, s.ctrl.Idle)
}

func (s *ControlService) SetFanAuto(ctx context.Context, auto bool) (models.ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := "manual"
	if auto {
		mode = "auto"
	}
	intent := models.ControllerEvent{Type: models.EventFanMode, Description: "fan " + mode, Metadata: map[string]any{"auto": auto}}
	return s.apply(ctx, &intent, func() (hvac.Output, error) {
		return s.ctrl.FanAuto(auto), nil
	})
}

// Tick advances the controller clock. A clock that went backwards leaves the
// controller untouched, is logged as CLOCK_ERROR and returned wrapped around
// hvac.ErrClockWentBackwards.
func (s *ControlService) Tick(ctx context.Context, now hvac.Seconds) (models.ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.apply(ctx, nil, func() (hvac.Output, error) {
		return s.ctrl.Tick(now)
	})
}

func (s *ControlService) request(ctx context.Context, r hvac.Request, call func() hvac.Output) (models.ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent := models.ControllerEvent{Type: models.EventRequest, Description: "request " + r.String(), Metadata: map[string]any{"request": r.String()}}
	return s.apply(ctx, &intent, func() (hvac.Output, error) {
		return call(), nil
	})
}

// apply runs call and persists the outcome. Must hold s.mu.
func (s *ControlService) apply(ctx context.Context, intent *models.ControllerEvent, call func() (hvac.Output, error)) (models.ControllerState, error) {
	prevNow := s.ctrl.Now()
	out, err := call()
	if err != nil {
		if errors.Is(err, hvac.ErrClockWentBackwards) {
			s.rejectTick(ctx, prevNow, err)
		}
		return s.snapshot(), err
	}

	events := transitions(s.out, out)
	if intent != nil {
		events = append([]models.ControllerEvent{*intent}, events...)
	}
	changed := intent != nil || len(events) > 0
	for _, e := range events {
		ev := s.event(e.Type, e.Description, e.Metadata)
		if err := s.eventRepo.Append(ctx, ev); err != nil {
			s.log.Errorw("hvac_event_append_failed", "type", ev.Type, "err", err)
		}
	}
	s.record(s.out, out)
	s.out = out
	s.metrics.SetClock(uint64(s.ctrl.Now()))

	st := s.snapshot()
	return st, s.commit(ctx, st, changed)
}

func (s *ControlService) rejectTick(ctx context.Context, current hvac.Seconds, err error) {
	s.metrics.TickRejected()
	s.log.Warnw("hvac_tick_rejected", "clock_s", current, "err", err)
	ev := s.event(models.EventClockError, err.Error(), nil)
	if aerr := s.eventRepo.Append(ctx, ev); aerr != nil {
		s.log.Errorw("hvac_event_append_failed", "type", ev.Type, "err", aerr)
	}
}

// commit saves the snapshot and, when publish is set, pushes it to the
// publishers. Publishing failures are only logged.
func (s *ControlService) commit(ctx context.Context, st models.ControllerState, publish bool) error {
	if err := s.stateRepo.Save(ctx, st); err != nil {
		s.log.Errorw("hvac_state_save_failed", "err", err)
		return fmt.Errorf("persist controller state: %w", err)
	}
	if publish {
		if err := s.pub.Publish(ctx, st); err != nil {
			s.log.Warnw("hvac_publish_failed", "err", err)
		}
	}
	return nil
}

func (s *ControlService) record(prev, next hvac.Output) {
	for _, unit := range []hvac.Service{hvac.ServiceHeat, hvac.ServiceCool} {
		was, is := prev.Service == unit, next.Service == unit
		if was != is {
			s.metrics.Transition(unit.String(), is)
			s.log.Infow("hvac_transition", "unit", unit.String(), "on", is, "clock_s", s.ctrl.Now())
		}
	}
	if prev.Fan != next.Fan {
		s.metrics.Transition("fan", next.Fan)
		s.log.Infow("hvac_transition", "unit", "fan", "on", next.Fan, "clock_s", s.ctrl.Now())
	}
}

// transitions lists the unit changes between two outputs, stops first.
func transitions(prev, next hvac.Output) []models.ControllerEvent {
	var out []models.ControllerEvent
	if prev.Service != next.Service && prev.Service != hvac.ServiceNone {
		out = append(out, unitEvent(prev.Service, false))
	}
	if prev.Service != next.Service && next.Service != hvac.ServiceNone {
		out = append(out, unitEvent(next.Service, true))
	}
	if prev.Fan != next.Fan {
		typ, desc := models.EventFanOff, "fan off"
		if next.Fan {
			typ, desc = models.EventFanOn, "fan on"
		}
		out = append(out, models.ControllerEvent{Type: typ, Description: desc})
	}
	return out
}

func unitEvent(svc hvac.Service, on bool) models.ControllerEvent {
	var typ string
	switch {
	case svc == hvac.ServiceHeat && on:
		typ = models.EventHeatOn
	case svc == hvac.ServiceHeat:
		typ = models.EventHeatOff
	case on:
		typ = models.EventCoolOn
	default:
		typ = models.EventCoolOff
	}
	state := "off"
	if on {
		state = "on"
	}
	return models.ControllerEvent{Type: typ, Description: svc.String() + " " + state}
}

func (s *ControlService) event(typ, desc string, meta any) models.ControllerEvent {
	return models.ControllerEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  s.wallNow().UTC(),
		ClockS:      uint64(s.ctrl.Now()),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	}
}

func (s *ControlService) snapshot() models.ControllerState {
	lk := s.ctrl.Lockouts()
	return models.ControllerState{
		ID:           stateRowID,
		Service:      strings.ToUpper(s.out.Service.String()),
		Fan:          s.out.Fan,
		Request:      strings.ToUpper(s.ctrl.Request().String()),
		FanAuto:      s.ctrl.FanAutoEnabled(),
		ClockS:       uint64(s.ctrl.Now()),
		HeatLockoutS: uint64(lk.Heat),
		CoolLockoutS: uint64(lk.Cool),
		FanLockoutS:  uint64(lk.Fan),
		UpdatedAt:    s.wallNow().UTC(),
	}
}
