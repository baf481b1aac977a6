// Package observer estimates the plot state from the scalar moisture
// measurement alone; the true error integral is never read.
package observer

// Luenberger evolves (estimated moisture, estimated integral) under the
// closed-loop linearized model, corrected by the measurement innovation
// through gains l1 and l2.
//
// The dynamics deliberately embed the controller gains Kp and Ki: the
// observer is built against the same closed-loop matrix A that the stability
// analysis uses, so A - L*C is exactly its error dynamics. Replacing this
// with a plant-only model would change what the analysis report means.
type Luenberger struct {
	dryingRate float64
	irrigation float64
	target     float64
	kp         float64
	ki         float64
	l1         float64
	l2         float64
}

func NewLuenberger(dryingRate, irrigation, target, kp, ki, l1, l2 float64) *Luenberger {
	return &Luenberger{
		dryingRate: dryingRate,
		irrigation: irrigation,
		target:     target,
		kp:         kp,
		ki:         ki,
		l1:         l1,
		l2:         l2,
	}
}

// Step Euler-advances the estimate one step given the measured moisture y.
func (o *Luenberger) Step(estimated, estimatedIntegral, y, dt float64) (float64, float64) {
	innovation := y - estimated
	dEst := -(o.dryingRate+o.irrigation*o.kp)*estimated +
		o.irrigation*o.ki*estimatedIntegral + o.l1*innovation
	dInt := o.target - estimated + o.l2*innovation
	return estimated + dt*dEst, estimatedIntegral + dt*dInt
}
