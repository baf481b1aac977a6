package sim

import "github.com/san-kum/soilsim/internal/analysis"

// Config holds the scalar parameters of one simulation run. It is built once
// at startup and never mutated.
type Config struct {
	DryingRate float64 // a: rate at which moisture decays toward ambient
	Irrigation float64 // b: moisture gain per unit of control input
	Ambient    float64 // moisture the soil relaxes to with no irrigation
	Target     float64 // moisture setpoint
	Initial    float64 // moisture at the first sample

	Kp float64
	Ki float64
	Kd float64

	L1 float64 // observer gain on the moisture estimate
	L2 float64 // observer gain on the integral estimate

	TStart  float64
	TEnd    float64
	Samples int
}

// Sample is the state of the loop at one grid point, as seen by metrics and
// step listeners.
type Sample struct {
	T                 float64
	Moisture          float64
	ErrorIntegral     float64
	Estimated         float64
	EstimatedIntegral float64
	Control           float64
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// StepListener receives each sample as it is produced, in step order.
type StepListener interface {
	OnStep(s Sample)
}

// Result collects the trajectories of a completed run. All series have
// exactly Config.Samples entries; Control[0] is defined as 0.
type Result struct {
	Times             []float64
	Moisture          []float64
	ErrorIntegral     []float64
	Estimated         []float64
	EstimatedIntegral []float64
	Control           []float64

	// Display-only signals, computed after the run with no feedback into it.
	Cost      []float64
	Reference []float64

	Metrics map[string]float64
	Report  analysis.Report
}
