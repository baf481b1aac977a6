package soil

import (
	"math"
	"testing"
)

func TestPlantStep(t *testing.T) {
	p := NewPlant(0.5, 2.0, 10.0, 20.0)

	// theta' = -0.5*(12-10) + 2*0.25 = -0.5; integral' = 20-12 = 8
	moisture, integral := p.Step(12.0, 0.0, 0.25, 0.5)

	if moisture != 11.75 {
		t.Errorf("expected moisture 11.75, got %v", moisture)
	}
	if integral != 4.0 {
		t.Errorf("expected integral 4.0, got %v", integral)
	}
}

func TestPlantDecaysToAmbient(t *testing.T) {
	p := NewPlant(0.2, 1.0, 30.0, 60.0)

	moisture, integral := 50.0, 0.0
	for i := 0; i < 1000; i++ {
		moisture, integral = p.Step(moisture, integral, 0, 0.1)
	}

	if math.Abs(moisture-30.0) > 1e-6 {
		t.Errorf("expected decay to ambient 30, got %v", moisture)
	}
}

func TestPlantEquilibrium(t *testing.T) {
	p := NewPlant(0.5, 2.0, 10.0, 20.0)

	tests := []struct {
		u    float64
		want float64
	}{
		{0, 10.0},
		{0.5, 12.0},
		{1, 14.0},
	}

	for _, tt := range tests {
		if got := p.Equilibrium(tt.u); got != tt.want {
			t.Errorf("Equilibrium(%v): expected %v, got %v", tt.u, tt.want, got)
		}
	}
}
