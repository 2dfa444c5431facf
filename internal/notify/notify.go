// Package notify publishes controller snapshots to external consumers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hvac/internal/models"
)

// Publisher pushes a controller snapshot somewhere. Failures must not stop
// the controller; callers log them and move on.
type Publisher interface {
	Publish(ctx context.Context, st models.ControllerState) error
	Close() error
}

// Payload is the JSON document sent to every publisher.
type Payload struct {
	HVAC StatePayload `json:"hvac"`
}

type StatePayload struct {
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Fan       string `json:"fan"`
	Request   string `json:"request"`
	FanMode   string `json:"fan_mode"`
	ClockS    uint64 `json:"clock_s"`
}

// FormatPayload renders st as the wire payload.
func FormatPayload(st models.ControllerState) ([]byte, error) {
	ts := st.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	fan, mode := "OFF", "MANUAL"
	if st.Fan {
		fan = "ON"
	}
	if st.FanAuto {
		mode = "AUTO"
	}
	return json.Marshal(Payload{
		HVAC: StatePayload{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Service:   st.Service,
			Fan:       fan,
			Request:   st.Request,
			FanMode:   mode,
			ClockS:    st.ClockS,
		},
	})
}

// Multi fans a snapshot out to several publishers.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, st models.ControllerState) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, st); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
