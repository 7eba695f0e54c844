package utils

import (
	"testing"
)

func TestPointerTrackerPhases(t *testing.T) {
	p := NewPointerTracker()

	steps := []struct {
		down bool
		want PointerPhase
	}{
		{false, PointerIdle},
		{true, PointerPressed},
		{true, PointerHeld},
		{true, PointerHeld},
		{false, PointerReleased},
		{false, PointerIdle},
		{true, PointerPressed},
		{false, PointerReleased},
		{true, PointerPressed},
	}

	for i, s := range steps {
		p.track(s.down, i, i*2)
		if got := p.Phase(); got != s.want {
			t.Errorf("step %d: phase = %v, want %v", i, got, s.want)
		}
		if x, y := p.Position(); x != i || y != i*2 {
			t.Errorf("step %d: position = (%d, %d)", i, x, y)
		}
	}
}

func TestRepeatTick(t *testing.T) {
	tests := []struct {
		duration int
		want     bool
	}{
		{0, false},
		{1, true},
		{2, false},
		{29, false},
		{30, true},
		{31, false},
		{33, true},
	}

	for _, tt := range tests {
		if got := RepeatTick(tt.duration); got != tt.want {
			t.Errorf("RepeatTick(%d) = %v, want %v", tt.duration, got, tt.want)
		}
	}
}
