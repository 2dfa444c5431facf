package notify

import (
	"context"
	"sync"

	"hvac/internal/models"
)

// FakePublisher records published snapshots for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// States contains every snapshot passed to Publish.
	States []models.ControllerState

	// PublishError, if set, is returned by Publish after recording.
	PublishError error

	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(_ context.Context, st models.ControllerState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.States = append(f.States, st)
	return f.PublishError
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Published returns a copy of the recorded snapshots.
func (f *FakePublisher) Published() []models.ControllerState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ControllerState(nil), f.States...)
}
