package control

import "errors"

// ErrInvalidStep indicates the controller was invoked with a zero step size.
// Config validation makes this unreachable in practice, but the controller
// still refuses the call rather than divide by zero.
var ErrInvalidStep = errors.New("control: zero step size")

// PID is a saturating PID controller on the moisture tracking error.
//
// The integral accumulates for the whole run and never resets, so integrator
// windup under sustained saturation is possible; the only guard is the output
// clamp. Before the first Compute call prevErr is zero, which produces a
// derivative spike at the first control step. Both behaviors are part of the
// discretization and are kept reproducible.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	integral float64
	prevErr  float64
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, Target: target}
}

// Compute returns the control signal for the given measured moisture,
// clamped to [0, 1], and advances the controller memory.
func (p *PID) Compute(measured, dt float64) (float64, error) {
	if dt == 0 {
		return 0, ErrInvalidStep
	}

	err := p.Target - measured
	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err

	u := p.Kp*err + p.Ki*p.integral + p.Kd*derivative
	return clamp(u, 0, 1), nil
}

// ErrorIntegral reports the accumulated tracking-error integral.
func (p *PID) ErrorIntegral() float64 {
	return p.integral
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
