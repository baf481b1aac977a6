// Package soil models the irrigated plot as a first-order system: moisture
// decays toward the ambient level and rises with the irrigation input.
package soil

// Plant advances the true plot state. Its second state dimension is the
// accumulated tracking-error integral, the same quantity the PID controller
// carries in its own memory.
type Plant struct {
	DryingRate float64 // a
	Irrigation float64 // b
	Ambient    float64
	Target     float64
}

func NewPlant(dryingRate, irrigation, ambient, target float64) *Plant {
	return &Plant{
		DryingRate: dryingRate,
		Irrigation: irrigation,
		Ambient:    ambient,
		Target:     target,
	}
}

// Step Euler-advances (moisture, errorIntegral) one step under control u.
func (p *Plant) Step(moisture, errorIntegral, u, dt float64) (float64, float64) {
	err := p.Target - moisture
	next := moisture + dt*(-p.DryingRate*(moisture-p.Ambient)+p.Irrigation*u)
	return next, errorIntegral + dt*err
}

// Equilibrium is the moisture level the plot settles at under a constant
// control input. With the actuator pinned at 1 this is the highest moisture
// the plot can reach.
func (p *Plant) Equilibrium(u float64) float64 {
	return p.Ambient + p.Irrigation*u/p.DryingRate
}
