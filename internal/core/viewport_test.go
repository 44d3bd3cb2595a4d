package core

import (
	"testing"
	"time"
)

func TestFieldScaling(t *testing.T) {
	heights := []float64{1, 48, 600, 1000, 1079.5}

	for _, h := range heights {
		f := FieldDimensions{Width: 2 * h, Height: h}

		if got := f.VH(0); got != 0 {
			t.Errorf("H=%v: VH(0) = %v, expected 0", h, got)
		}
		if got := f.VH(100); got != h {
			t.Errorf("H=%v: VH(100) = %v, expected %v", h, got, h)
		}
		if got, want := f.VH(37.5), h*37.5/100; got != want {
			t.Errorf("H=%v: VH(37.5) = %v, expected %v", h, got, want)
		}
		if got := f.VW(100); got != 2*h {
			t.Errorf("H=%v: VW(100) = %v, expected %v", h, got, 2*h)
		}
	}
}

func TestFieldScalingIsNotClamped(t *testing.T) {
	f := NewField(200, 100)

	if got := f.VW(150); got != 300 {
		t.Errorf("VW(150) = %v, expected 300", got)
	}
	if got := f.VH(-10); got != -10 {
		t.Errorf("VH(-10) = %v, expected -10", got)
	}
}

func TestFrameDelay(t *testing.T) {
	start := time.Unix(1000, 0)
	interval := 20 * time.Millisecond

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected time.Duration
	}{
		{"no work", 0, 20 * time.Millisecond},
		{"some work", 7 * time.Millisecond, 13 * time.Millisecond},
		{"exactly on budget", 20 * time.Millisecond, 0},
		{"overran", 35 * time.Millisecond, 0},
		{"clock went backwards", -5 * time.Millisecond, 20 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FrameDelay(interval, start, start.Add(tc.elapsed))
			if got != tc.expected {
				t.Errorf("FrameDelay() = %v, expected %v", got, tc.expected)
			}
		})
	}
}
