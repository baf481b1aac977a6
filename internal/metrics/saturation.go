package metrics

import "github.com/san-kum/soilsim/internal/sim"

// Saturation is the fraction of steps with the actuator pinned at a limit.
type Saturation struct {
	name    string
	pinned  int
	samples int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(smp sim.Sample) {
	s.samples++
	if smp.Control <= 0 || smp.Control >= 1 {
		s.pinned++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.pinned) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.pinned = 0
	s.samples = 0
}
