package hvac

import "fmt"

// Controller arbitrates heat, cool and fan.
type Controller struct {
	heat    *Switch
	cool    *Switch
	fan     *Switch
	request Request
	fanAuto bool
	now     Seconds
}

// New returns an idle controller with the fan in auto mode.
func New(cfg Config) *Controller {
	return &Controller{
		heat:    NewSwitch(cfg.Heat),
		cool:    NewSwitch(cfg.Cool),
		fan:     NewSwitch(cfg.Fan),
		request: RequestIdle,
		fanAuto: true,
	}
}

// Heat calls for heat, dropping any call for cool.
func (c *Controller) Heat() Output {
	return c.setRequest(RequestHeat)
}

// Cool calls for cool, dropping any call for heat.
func (c *Controller) Cool() Output {
	return c.setRequest(RequestCool)
}

// Idle drops any call for service.
func (c *Controller) Idle() Output {
	return c.setRequest(RequestIdle)
}

// FanAuto switches the fan between auto (follow the services) and manual
// (hold the current value).
func (c *Controller) FanAuto(enabled bool) Output {
	c.fanAuto = enabled
	return c.resolve()
}

// Tick advances the controller to now and applies every transition the
// timing limits allow. A now lower than the previous one is rejected with
// ErrClockWentBackwards and leaves the controller untouched.
func (c *Controller) Tick(now Seconds) (Output, error) {
	if now < c.now {
		return c.output(), fmt.Errorf("%w: tick at %d after %d", ErrClockWentBackwards, now, c.now)
	}
	c.now = now
	return c.resolve(), nil
}

// Request returns the current conditioning intent.
func (c *Controller) Request() Request {
	return c.request
}

// FanAutoEnabled reports whether the fan follows the services.
func (c *Controller) FanAutoEnabled() bool {
	return c.fanAuto
}

// Now returns the last time passed to Tick.
func (c *Controller) Now() Seconds {
	return c.now
}

// Lockouts returns the per-unit time left before each unit may change state.
func (c *Controller) Lockouts() Lockouts {
	return Lockouts{
		Heat: c.heat.Remaining(c.now),
		Cool: c.cool.Remaining(c.now),
		Fan:  c.fan.Remaining(c.now),
	}
}

// Intent changes take effect at the last recorded time; they never move the
// clock.
func (c *Controller) setRequest(r Request) Output {
	c.request = r
	return c.resolve()
}

func (c *Controller) resolve() Output {
	want := c.request.service()

	// Vacate the running service before the other one may start.
	if active := c.active(); active != ServiceNone && active != want {
		c.unit(active).Resolve(false, c.now)
	}
	if c.active() == ServiceNone && want != ServiceNone {
		c.unit(want).Resolve(true, c.now)
	}

	fanWant := c.fan.Active()
	if c.fanAuto {
		fanWant = c.active() != ServiceNone
	}
	c.fan.Resolve(fanWant, c.now)

	return c.output()
}

func (c *Controller) active() Service {
	switch {
	case c.heat.Active():
		return ServiceHeat
	case c.cool.Active():
		return ServiceCool
	default:
		return ServiceNone
	}
}

func (c *Controller) unit(s Service) *Switch {
	if s == ServiceHeat {
		return c.heat
	}
	return c.cool
}

func (c *Controller) output() Output {
	return Output{Service: c.active(), Fan: c.fan.Active()}
}
