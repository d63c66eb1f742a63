package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
)

func TestPeakAmplitude(t *testing.T) {
	p := NewPeakAmplitude()
	for _, x := range []float64{0.1, -0.4, 0.3} {
		p.Observe(dynamo.State{x, 0}, 0)
	}
	if p.Value() != 0.4 {
		t.Errorf("PeakAmplitude = %v, want 0.4", p.Value())
	}
	p.Reset()
	if p.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSettling(t *testing.T) {
	tests := []struct {
		name string
		t    []float64
		x    []float64
		want float64
	}{
		{"constant", []float64{0, 1, 2}, []float64{1, 1, 1}, 0},
		{"decay", []float64{0, 1, 2, 3, 4}, []float64{1, 0.5, 0.1, 0.01, 0}, 3},
		{"step response", []float64{0, 1, 2, 3}, []float64{0, 0.8, 0.99, 1}, 2},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Settling(tt.t, tt.x, DefaultSettlingBand); got != tt.want {
				t.Errorf("Settling() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettlingTime_DampedOscillation(t *testing.T) {
	s := NewSettlingTime(0)
	zetaWn := 1.0
	for i := 0; i < 10000; i++ {
		tt := float64(i) * 0.001
		s.Observe(dynamo.State{math.Exp(-zetaWn*tt) * math.Cos(10*tt), 0}, tt)
	}
	// e^{-t} < 0.02 after ln(50) ≈ 3.9 s
	if v := s.Value(); v < 3.0 || v > 4.0 {
		t.Errorf("SettlingTime = %v, want within [3, 4]", v)
	}
}
