package sim

import (
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	a := State{1, 2}
	b := a.Clone()
	b[0] = 9
	if a[0] != 1 {
		t.Error("Clone shares storage")
	}
}

func TestRecording(t *testing.T) {
	r := NewRecording("wind", "power")
	if err := r.Add(0, 8, 1000); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(0.1, 9, 1500); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(0.2, 1); err == nil {
		t.Error("expected error for short row")
	}

	power, ok := r.Channel("power")
	if !ok || len(power) != 2 || power[1] != 1500 {
		t.Errorf("unexpected channel %v", power)
	}
	if _, ok := r.Channel("torque"); ok {
		t.Error("expected missing channel")
	}
	if v, ok := r.Last("wind"); !ok || v != 9 {
		t.Errorf("expected last wind 9, got %v", v)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", r.Len())
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 15, Message: "invalid state"}
	if err.Error() != "step 15 (t=1.5000): invalid state" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
