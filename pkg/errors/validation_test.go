package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidatePlanPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "plan.toml", false},
		{"valid nested", "examples/plan/basic.toml", false},
		{"valid absolute", "/home/user/plan.toml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "plan\x00.toml", true},
		{"control char", "plan\x01.toml", true},
		{"newline", "plan\n.toml", true},
		{"backslash", "plans\\plan.toml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlanPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePlanPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTotal(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		wantErr bool
	}{
		{"positive", 1000, false},
		{"negative", -250, false},
		{"zero", 0, false},
		{"NaN", math.NaN(), true},
		{"positive infinity", math.Inf(1), true},
		{"negative infinity", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTotal(tt.total)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTotal(%v) error = %v, wantErr %v", tt.total, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTiming(t *testing.T) {
	tests := []struct {
		name    string
		timing  map[float64]float64
		wantErr bool
	}{
		{"empty is allowed", nil, false},
		{"single instant", map[float64]float64{0: 1}, false},
		{"spread", map[float64]float64{0: 1, 0.5: 2, 1: 1}, false},
		{"zero weight alongside positive", map[float64]float64{0: 0, 1: 1}, false},

		{"time below range", map[float64]float64{-0.1: 1}, true},
		{"time above range", map[float64]float64{1.5: 1}, true},
		{"negative weight", map[float64]float64{0: -1}, true},
		{"NaN weight", map[float64]float64{0: math.NaN()}, true},
		{"all zero weights", map[float64]float64{0: 0, 1: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiming(tt.timing)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTiming(%v) error = %v, wantErr %v", tt.timing, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{"dot", "svg", "json"} {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) error = %v, want nil", format, err)
		}
	}
	for _, format := range []string{"", "png", "pdf"} {
		if err := ValidateFormat(format); !Is(err, ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) error = %v, want INVALID_FORMAT", format, err)
		}
	}
}
