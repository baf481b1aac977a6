package control

import (
	"errors"
	"testing"
)

func TestPIDCompute(t *testing.T) {
	// dt and gains chosen exactly representable in binary so the expected
	// output is exact.
	p := NewPID(0.25, 0.5, 0.125, 1.0)

	u, err := p.Compute(0.0, 0.5)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	// err=1, integral=0.5, derivative=(1-0)/0.5=2
	expected := 0.25*1 + 0.5*0.5 + 0.125*2
	if u != expected {
		t.Errorf("expected u=%v, got %v", expected, u)
	}
}

func TestPIDSaturation(t *testing.T) {
	tests := []struct {
		name     string
		measured float64
		want     float64
	}{
		{"large positive error", -100, 1.0},
		{"large negative error", 100, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPID(10, 0, 0, 0)
			u, err := p.Compute(tt.measured, 0.1)
			if err != nil {
				t.Fatalf("compute failed: %v", err)
			}
			if u != tt.want {
				t.Errorf("expected %v, got %v", tt.want, u)
			}
		})
	}
}

func TestPIDZeroStep(t *testing.T) {
	p := NewPID(1, 1, 1, 1)
	_, err := p.Compute(0, 0)
	if !errors.Is(err, ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
}

// The very first control step sees prevErr == 0, so a pure-derivative
// controller spikes at step 1 and drops to zero at step 2. This is a
// documented behavior of the discretization, not a defect.
func TestPIDFirstStepDerivativeSpike(t *testing.T) {
	p := NewPID(0, 0, 0.01, 1.0)

	u1, err := p.Compute(0, 0.1)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// derivative = (1 - 0) / 0.1 = 10
	if u1 != 0.1 {
		t.Errorf("expected spike u=0.1, got %v", u1)
	}

	u2, err := p.Compute(0, 0.1)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if u2 != 0 {
		t.Errorf("expected u=0 once error is steady, got %v", u2)
	}
}

// Under sustained saturation the integral keeps accumulating: the clamp is
// the only windup guard.
func TestPIDIntegralWindup(t *testing.T) {
	p := NewPID(1, 0.1, 0, 100)

	prev := 0.0
	for i := 0; i < 50; i++ {
		u, err := p.Compute(0, 0.1)
		if err != nil {
			t.Fatalf("compute failed: %v", err)
		}
		if u != 1.0 {
			t.Fatalf("expected saturated output, got %v", u)
		}
		if p.ErrorIntegral() <= prev {
			t.Fatalf("integral stopped growing at step %d", i)
		}
		prev = p.ErrorIntegral()
	}
}

func TestPIDReset(t *testing.T) {
	p := NewPID(1, 1, 1, 5)
	if _, err := p.Compute(0, 0.1); err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if p.ErrorIntegral() == 0 {
		t.Fatal("expected non-zero integral before reset")
	}

	p.Reset()
	if p.ErrorIntegral() != 0 {
		t.Error("expected zero integral after reset")
	}
}
