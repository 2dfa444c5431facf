package hvac

import (
	"errors"
	"fmt"
)

// ErrClockWentBackwards is returned by Tick when the reported time is lower
// than the last recorded one.
var ErrClockWentBackwards = errors.New("hvac: clock went backwards")

// Seconds is an abstract, non-negative amount of elapsed time. The caller
// picks the unit; the controller only compares magnitudes.
type Seconds uint64

// Limit returns a pointer to s for use as an optional ServiceConfig bound.
func Limit(s Seconds) *Seconds {
	return &s
}

// ServiceConfig holds the timing constraints of one unit. A nil bound means
// the constraint is absent.
type ServiceConfig struct {
	MinRun     *Seconds `json:"min_run,omitempty"`
	MinRecover *Seconds `json:"min_recover,omitempty"`
}

// Config holds the constraints for every unit of the controller.
type Config struct {
	Heat ServiceConfig `json:"heat"`
	Cool ServiceConfig `json:"cool"`
	Fan  ServiceConfig `json:"fan"`
}

// DefaultConfig returns the conservative defaults: one minute run and
// recovery for heat and fan, five minutes for cool.
func DefaultConfig() Config {
	return Config{
		Heat: ServiceConfig{MinRun: Limit(60), MinRecover: Limit(60)},
		Cool: ServiceConfig{MinRun: Limit(300), MinRecover: Limit(300)},
		Fan:  ServiceConfig{MinRun: Limit(60), MinRecover: Limit(60)},
	}
}

// WithHeat replaces the heat constraints.
func (c Config) WithHeat(minRun, minRecover *Seconds) Config {
	c.Heat = ServiceConfig{MinRun: minRun, MinRecover: minRecover}
	return c
}

// WithCool replaces the cool constraints.
func (c Config) WithCool(minRun, minRecover *Seconds) Config {
	c.Cool = ServiceConfig{MinRun: minRun, MinRecover: minRecover}
	return c
}

// WithFan replaces the fan constraints.
func (c Config) WithFan(minRun, minRecover *Seconds) Config {
	c.Fan = ServiceConfig{MinRun: minRun, MinRecover: minRecover}
	return c
}

// Service is the conditioning service that is currently running.
type Service uint8

const (
	ServiceNone Service = iota
	ServiceHeat
	ServiceCool
)

func (s Service) String() string {
	switch s {
	case ServiceHeat:
		return "heat"
	case ServiceCool:
		return "cool"
	default:
		return "none"
	}
}

func (s Service) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Service) UnmarshalText(text []byte) error {
	switch string(text) {
	case "heat":
		*s = ServiceHeat
	case "cool":
		*s = ServiceCool
	case "none", "":
		*s = ServiceNone
	default:
		return fmt.Errorf("hvac: unknown service %q", text)
	}
	return nil
}

// Request is the conditioning intent last set by the caller.
type Request uint8

const (
	RequestIdle Request = iota
	RequestHeat
	RequestCool
)

func (r Request) String() string {
	switch r {
	case RequestHeat:
		return "heat"
	case RequestCool:
		return "cool"
	default:
		return "idle"
	}
}

func (r Request) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// service maps the request to the service it asks for.
func (r Request) service() Service {
	switch r {
	case RequestHeat:
		return ServiceHeat
	case RequestCool:
		return ServiceCool
	default:
		return ServiceNone
	}
}

// Output is the resolved state the caller applies to its equipment.
type Output struct {
	Service Service `json:"service"`
	Fan     bool    `json:"fan"`
}

// Lockouts reports, per unit, how long until the unit may leave its current
// state. Zero means the unit is free to change.
type Lockouts struct {
	Heat Seconds `json:"heat"`
	Cool Seconds `json:"cool"`
	Fan  Seconds `json:"fan"`
}
