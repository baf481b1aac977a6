package metrics

import (
	"math"

	"github.com/san-kum/soilsim/internal/sim"
)

// TrackingError is the RMS deviation of moisture from the target.
type TrackingError struct {
	name    string
	target  float64
	sumSq   float64
	samples int
}

func NewTrackingError(target float64) *TrackingError {
	return &TrackingError{name: "tracking_rms", target: target}
}

func (t *TrackingError) Name() string {
	return t.name
}

func (t *TrackingError) Observe(s sim.Sample) {
	dev := t.target - s.Moisture
	t.sumSq += dev * dev
	t.samples++
}

func (t *TrackingError) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return math.Sqrt(t.sumSq / float64(t.samples))
}

func (t *TrackingError) Reset() {
	t.sumSq = 0
	t.samples = 0
}
