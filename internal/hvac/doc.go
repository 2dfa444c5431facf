// Package hvac implements the state machine for a single-stage HVAC controller.
//
// The controller decides whether heating, cooling and the circulation fan are
// energized. It never reads a clock: the caller reports elapsed time through
// Tick and forwards intent through Heat, Cool, Idle and FanAuto. Every call
// returns the resolved Output for the caller to apply to its actuators.
//
// # Timing constraints
//
// Each unit (heat, cool, fan) is a Switch with an optional minimum run time
// and an optional minimum recovery time. A unit that has been switched on
// stays on for at least its minimum run; a unit that has been switched off
// stays off for at least its minimum recovery. All units are treated as if
// they were switched off at time 0, so a unit with a recovery constraint
// cannot start before that much time has elapsed since boot.
//
// # Exclusivity
//
// Heat and cool are never active together. When the request changes from
// one service to the other, the active service is vacated first and the
// requested one starts only once nothing is running and its own recovery
// timer allows it.
//
// # Fan
//
// In auto mode the fan follows the conditioning services. In manual mode it
// holds whatever value it had when auto mode was turned off.
//
// A Controller is not safe for concurrent use; it is meant to be owned by a
// single control loop.
package hvac
