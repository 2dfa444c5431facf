package models

import "time"

// Event types written to the controller log.
const (
	EventBoot       = "BOOT"
	EventRequest    = "REQUEST"
	EventFanMode    = "FAN_MODE"
	EventHeatOn     = "HEAT_ON"
	EventHeatOff    = "HEAT_OFF"
	EventCoolOn     = "COOL_ON"
	EventCoolOff    = "COOL_OFF"
	EventFanOn      = "FAN_ON"
	EventFanOff     = "FAN_OFF"
	EventClockError = "CLOCK_ERROR"
)

// ControllerEvent is a single log entry.
type ControllerEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	ClockS      uint64    `json:"clock_s"`     // controller time of the event
	Type        string    `json:"type"`        // BOOT | REQUEST | HEAT_ON | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
