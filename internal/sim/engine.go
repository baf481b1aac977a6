package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/soilsim/internal/analysis"
	"github.com/san-kum/soilsim/internal/control"
	"github.com/san-kum/soilsim/internal/observer"
	"github.com/san-kum/soilsim/internal/soil"
)

// Engine drives the closed loop over a fixed, equally spaced time grid. Each
// step invokes controller, plant, and observer in that order, so sample i
// depends only on sample i-1 plus the controller memory. All per-run state
// is rebuilt inside Run, making repeated runs of one engine bit-identical.
type Engine struct {
	cfg       Config
	dt        float64
	metrics   []Metric
	listeners []StepListener
}

// New validates the configuration and returns a ready engine. Violations are
// reported as ErrInvalidConfig before any step executes.
func New(cfg Config) (*Engine, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Engine{
		cfg: cfg,
		dt:  (cfg.TEnd - cfg.TStart) / float64(cfg.Samples-1),
	}, nil
}

func (e *Engine) AddMetric(m Metric)         { e.metrics = append(e.metrics, m) }
func (e *Engine) AddListener(l StepListener) { e.listeners = append(e.listeners, l) }

// Dt is the grid spacing, used as the Euler step.
func (e *Engine) Dt() float64 { return e.dt }

// Run executes the fixed-horizon simulation and returns the trajectories,
// metric values, and analysis report.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	n := cfg.Samples

	pid := control.NewPID(cfg.Kp, cfg.Ki, cfg.Kd, cfg.Target)
	plant := soil.NewPlant(cfg.DryingRate, cfg.Irrigation, cfg.Ambient, cfg.Target)
	obs := observer.NewLuenberger(
		cfg.DryingRate, cfg.Irrigation, cfg.Target, cfg.Kp, cfg.Ki, cfg.L1, cfg.L2)

	for _, m := range e.metrics {
		m.Reset()
	}

	res := &Result{
		Times:             make([]float64, 0, n),
		Moisture:          make([]float64, 0, n),
		ErrorIntegral:     make([]float64, 0, n),
		Estimated:         make([]float64, 0, n),
		EstimatedIntegral: make([]float64, 0, n),
		Control:           make([]float64, 0, n),
		Metrics:           make(map[string]float64),
	}

	moisture, errInt := cfg.Initial, 0.0
	estimated, estInt := cfg.Initial, 0.0

	res.Times = append(res.Times, cfg.TStart)
	res.Moisture = append(res.Moisture, moisture)
	res.ErrorIntegral = append(res.ErrorIntegral, errInt)
	res.Estimated = append(res.Estimated, estimated)
	res.EstimatedIntegral = append(res.EstimatedIntegral, estInt)
	res.Control = append(res.Control, 0)

	for i := 1; i < n; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		t := cfg.TStart + float64(i)*e.dt

		// Both the controller and the observer see the sample i-1
		// measurement; the true integral state is never read by either.
		y := moisture
		u, err := pid.Compute(y, e.dt)
		if err != nil {
			return nil, &StepError{Step: i, Time: t, Wrapped: err}
		}

		moisture, errInt = plant.Step(moisture, errInt, u, e.dt)
		estimated, estInt = obs.Step(estimated, estInt, y, e.dt)

		res.Times = append(res.Times, t)
		res.Moisture = append(res.Moisture, moisture)
		res.ErrorIntegral = append(res.ErrorIntegral, errInt)
		res.Estimated = append(res.Estimated, estimated)
		res.EstimatedIntegral = append(res.EstimatedIntegral, estInt)
		res.Control = append(res.Control, u)

		s := Sample{
			T:                 t,
			Moisture:          moisture,
			ErrorIntegral:     errInt,
			Estimated:         estimated,
			EstimatedIntegral: estInt,
			Control:           u,
		}
		for _, m := range e.metrics {
			m.Observe(s)
		}
		for _, l := range e.listeners {
			l.OnStep(s)
		}
	}

	e.complete(res)
	return res, nil
}

// complete assembles the derived display signals, metric values, and the
// linear-systems report once stepping has finished.
func (e *Engine) complete(res *Result) {
	cfg := e.cfg

	res.Cost = make([]float64, len(res.Times))
	res.Reference = make([]float64, len(res.Times))
	// The reference decays toward the target at the closed-loop
	// proportional rate a + b*Kp.
	rate := cfg.DryingRate + cfg.Irrigation*cfg.Kp
	for i, t := range res.Times {
		devErr := cfg.Target - res.Moisture[i]
		u := res.Control[i]
		res.Cost[i] = devErr*devErr + 0.1*u*u
		res.Reference[i] = cfg.Target + (cfg.Initial-cfg.Target)*math.Exp(-rate*(t-cfg.TStart))
	}

	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	res.Report = analysis.Analyze(analysis.NewClosedLoop(
		cfg.DryingRate, cfg.Irrigation, cfg.Kp, cfg.Ki, cfg.L1, cfg.L2))
}

func validate(cfg Config) error {
	if cfg.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidConfig, cfg.Samples)
	}
	if cfg.TEnd <= cfg.TStart {
		return fmt.Errorf("%w: time span [%g, %g] is empty", ErrInvalidConfig, cfg.TStart, cfg.TEnd)
	}
	scalars := []float64{
		cfg.DryingRate, cfg.Irrigation, cfg.Ambient, cfg.Target, cfg.Initial,
		cfg.Kp, cfg.Ki, cfg.Kd, cfg.L1, cfg.L2, cfg.TStart, cfg.TEnd,
	}
	for _, v := range scalars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite parameter", ErrInvalidConfig)
		}
	}
	return nil
}
