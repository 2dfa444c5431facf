package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hvac/internal/hvac"
	"hvac/internal/logger"
	"hvac/internal/models"
)

type tickRecorder struct {
	mu    sync.Mutex
	ticks []hvac.Seconds
	err   error
}

func (r *tickRecorder) Tick(_ context.Context, now hvac.Seconds) (models.ControllerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, now)
	return models.ControllerState{ClockS: uint64(now)}, r.err
}

func (r *tickRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

func TestClockService_StepConvertsElapsedToWholeSeconds(t *testing.T) {
	rec := &tickRecorder{}
	svc := NewClockService(rec, logger.Nop())

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, elapsed := range []time.Duration{
		999 * time.Millisecond,
		time.Second,
		61*time.Second + 500*time.Millisecond,
		-time.Second,
	} {
		now := start.Add(elapsed)
		svc.now = func() time.Time { return now }
		svc.step(context.Background(), start)
	}

	want := []hvac.Seconds{0, 1, 61, 0}
	if len(rec.ticks) != len(want) {
		t.Fatalf("ticks: got %v, want %v", rec.ticks, want)
	}
	for i := range want {
		if rec.ticks[i] != want[i] {
			t.Fatalf("ticks: got %v, want %v", rec.ticks, want)
		}
	}
}

func TestClockService_StepToleratesErrors(t *testing.T) {
	for _, err := range []error{
		hvac.ErrClockWentBackwards,
		errors.New("persist controller state: disk full"),
	} {
		rec := &tickRecorder{err: err}
		svc := NewClockService(rec, logger.Nop())
		svc.step(context.Background(), time.Now())
		if rec.count() != 1 {
			t.Fatalf("expected one tick for %v", err)
		}
	}
}

func TestClockService_RunStopsOnCancel(t *testing.T) {
	rec := &tickRecorder{}
	svc := NewClockService(rec, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for rec.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("clock did not tick")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
