package models

import "time"

type ControllerState struct {
	ID      int    `json:"id"`
	Service string `json:"service"`  // HEAT | COOL | NONE
	Fan     bool   `json:"fan"`      // fan energized
	Request string `json:"request"`  // HEAT | COOL | IDLE
	FanAuto bool   `json:"fan_auto"` // fan follows services
	ClockS  uint64 `json:"clock_s"`  // controller time, seconds since boot

	HeatLockoutS uint64 `json:"heat_lockout_s"` // seconds until heat may change state
	CoolLockoutS uint64 `json:"cool_lockout_s"`
	FanLockoutS  uint64 `json:"fan_lockout_s"`

	UpdatedAt time.Time `json:"updated_at"`
}
