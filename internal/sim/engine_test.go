package sim

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

// nominalConfig is the demo scenario: the target sits above what the
// saturated actuator can sustain, so the loop climbs monotonically toward
// the actuator ceiling with the control pinned at 1.
func nominalConfig() Config {
	return Config{
		DryingRate: 0.1, Irrigation: 0.5, Ambient: 30, Target: 60, Initial: 30,
		Kp: 0.8, Ki: 0.05, Kd: 0.2,
		L1: 6.4, L2: 78,
		TStart: 0, TEnd: 100, Samples: 500,
	}
}

// gentleConfig keeps the target reachable so the loop settles without
// sustained saturation.
func gentleConfig() Config {
	cfg := nominalConfig()
	cfg.Target = 32
	return cfg
}

func mustRun(t *testing.T, cfg Config) *Result {
	t.Helper()
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func TestEngineSeriesShape(t *testing.T) {
	cfg := nominalConfig()
	res := mustRun(t, cfg)

	for name, series := range map[string][]float64{
		"times":              res.Times,
		"moisture":           res.Moisture,
		"error_integral":     res.ErrorIntegral,
		"estimated":          res.Estimated,
		"estimated_integral": res.EstimatedIntegral,
		"control":            res.Control,
		"cost":               res.Cost,
		"reference":          res.Reference,
	} {
		if len(series) != cfg.Samples {
			t.Errorf("%s: expected %d samples, got %d", name, cfg.Samples, len(series))
		}
	}

	if res.Moisture[0] != cfg.Initial {
		t.Errorf("expected initial moisture %v, got %v", cfg.Initial, res.Moisture[0])
	}
	if res.Estimated[0] != cfg.Initial {
		t.Errorf("expected initial estimate %v, got %v", cfg.Initial, res.Estimated[0])
	}
	if res.Control[0] != 0 {
		t.Errorf("expected control[0]=0, got %v", res.Control[0])
	}

	for i, u := range res.Control {
		if u < 0 || u > 1 {
			t.Fatalf("control[%d]=%v outside [0,1]", i, u)
		}
	}

	dt := res.Times[1] - res.Times[0]
	for i := 2; i < len(res.Times); i++ {
		if math.Abs((res.Times[i]-res.Times[i-1])-dt) > 1e-9 {
			t.Fatalf("grid not equally spaced at sample %d", i)
		}
	}
}

func TestEngineInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"one sample", func(c *Config) { c.Samples = 1 }},
		{"zero samples", func(c *Config) { c.Samples = 0 }},
		{"empty span", func(c *Config) { c.TEnd = c.TStart }},
		{"reversed span", func(c *Config) { c.TEnd = c.TStart - 10 }},
		{"nan gain", func(c *Config) { c.Kp = math.NaN() }},
		{"inf target", func(c *Config) { c.Target = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := nominalConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestEngineConvergence(t *testing.T) {
	cfg := gentleConfig()
	res := mustRun(t, cfg)

	final := res.Moisture[len(res.Moisture)-1]
	tolerance := 0.05 * math.Abs(cfg.Initial-cfg.Target)
	if math.Abs(final-cfg.Target) > tolerance {
		t.Errorf("expected convergence to %v within %v, got %v", cfg.Target, tolerance, final)
	}
}

func TestEngineNominalScenario(t *testing.T) {
	res := mustRun(t, nominalConfig())

	for i := 1; i < len(res.Moisture); i++ {
		if res.Moisture[i] < res.Moisture[i-1] {
			t.Fatalf("moisture not monotone at sample %d", i)
		}
	}

	finalU := res.Control[len(res.Control)-1]
	if finalU != 1.0 {
		t.Errorf("expected saturated final control, got %v", finalU)
	}

	// 60 is above the actuator ceiling of 35: the loop climbs but cannot
	// reach the setpoint.
	final := res.Moisture[len(res.Moisture)-1]
	if final >= 60 || final <= 30 {
		t.Errorf("expected final moisture in (30, 60), got %v", final)
	}

	if !res.Report.StableA {
		t.Error("expected stable closed loop")
	}
	if !res.Report.Observable {
		t.Error("expected observable system")
	}
	if !res.Report.Controllable {
		t.Error("expected controllable system")
	}
}

func TestEngineIdempotence(t *testing.T) {
	engine, err := New(nominalConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	first, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("expected bit-identical results from identical runs")
	}
}

// The plant's integral state is the controller's integral memory by
// construction: re-accumulating the error series in step order reproduces it
// exactly.
func TestEngineIntegralMirrorsController(t *testing.T) {
	cfg := gentleConfig()
	res := mustRun(t, cfg)

	dt := res.Times[1] - res.Times[0]
	integral := 0.0
	for i := 1; i < len(res.Moisture); i++ {
		integral += dt * (cfg.Target - res.Moisture[i-1])
		if res.ErrorIntegral[i] != integral {
			t.Fatalf("integral mismatch at sample %d: %v vs %v", i, res.ErrorIntegral[i], integral)
		}
	}
}

func TestEngineDerivedSignals(t *testing.T) {
	cfg := gentleConfig()
	res := mustRun(t, cfg)

	for i := range res.Times {
		dev := cfg.Target - res.Moisture[i]
		u := res.Control[i]
		if res.Cost[i] != dev*dev+0.1*u*u {
			t.Fatalf("cost mismatch at sample %d", i)
		}
	}

	if res.Reference[0] != cfg.Initial {
		t.Errorf("expected reference to start at %v, got %v", cfg.Initial, res.Reference[0])
	}
	final := res.Reference[len(res.Reference)-1]
	if math.Abs(final-cfg.Target) > 0.01 {
		t.Errorf("expected reference to decay to %v, got %v", cfg.Target, final)
	}
}

type testMetric struct {
	count int
	last  float64
}

func (m *testMetric) Name() string     { return "test" }
func (m *testMetric) Observe(s Sample) { m.count++; m.last = s.Moisture }
func (m *testMetric) Value() float64   { return m.last }
func (m *testMetric) Reset()           { m.count = 0; m.last = 0 }

func TestEngineMetrics(t *testing.T) {
	cfg := nominalConfig()
	engine, err := New(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	metric := &testMetric{}
	engine.AddMetric(metric)

	res, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if metric.count != cfg.Samples-1 {
		t.Errorf("expected %d observations, got %d", cfg.Samples-1, metric.count)
	}
	if got, ok := res.Metrics["test"]; !ok || got != res.Moisture[len(res.Moisture)-1] {
		t.Errorf("metric value not plumbed into result: %v (present=%v)", got, ok)
	}
}

func TestEngineCanceledContext(t *testing.T) {
	engine, err := New(nominalConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
