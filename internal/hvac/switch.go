package hvac

// Switch tracks one binary unit and enforces its run and recovery limits.
type Switch struct {
	cfg           ServiceConfig
	active        bool
	activatedAt   Seconds
	deactivatedAt Seconds // 0 until the first real stop: the unit counts as stopped at boot
}

// NewSwitch returns an inactive switch governed by cfg.
func NewSwitch(cfg ServiceConfig) *Switch {
	return &Switch{cfg: cfg}
}

// Active reports the resolved state.
func (s *Switch) Active() bool {
	return s.active
}

// Config returns the constraints the switch was built with.
func (s *Switch) Config() ServiceConfig {
	return s.cfg
}

// Resolve moves the switch toward desired if its limits allow it at now and
// returns the resulting state. A refused change is not remembered; callers
// ask again on every tick.
func (s *Switch) Resolve(desired bool, now Seconds) bool {
	if desired == s.active {
		return s.active
	}
	if desired {
		if satisfied(s.cfg.MinRecover, s.deactivatedAt, now) {
			s.active = true
			s.activatedAt = now
		}
		return s.active
	}
	if satisfied(s.cfg.MinRun, s.activatedAt, now) {
		s.active = false
		s.deactivatedAt = now
	}
	return s.active
}

// Remaining returns how long until the switch may leave its current state.
func (s *Switch) Remaining(now Seconds) Seconds {
	if s.active {
		return remaining(s.cfg.MinRun, s.activatedAt, now)
	}
	return remaining(s.cfg.MinRecover, s.deactivatedAt, now)
}

func satisfied(limit *Seconds, since, now Seconds) bool {
	return remaining(limit, since, now) == 0
}

func remaining(limit *Seconds, since, now Seconds) Seconds {
	if limit == nil {
		return 0
	}
	if now < since {
		// Controller rejects a backwards clock before it gets here.
		return *limit
	}
	elapsed := now - since
	if elapsed >= *limit {
		return 0
	}
	return *limit - elapsed
}
