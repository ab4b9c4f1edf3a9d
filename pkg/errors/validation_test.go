package errors

import (
	"math"
	"testing"
)

func TestValidateRisk(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"quarter", 0.25, false},

		{"negative", -0.01, true},
		{"above one", 1.01, true},
		{"NaN", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRisk(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRisk(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRisk) {
				t.Errorf("ValidateRisk(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRisk)
			}
		})
	}
}

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"one", 1, false},
		{"third", 1.0 / 3, false},

		{"zero sentinel", 0, true},
		{"negative", -0.5, true},
		{"above one", 2, true},
		{"NaN", math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeight(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWeight(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVertexID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "api", false},
		{"dotted", "db.primary", false},
		{"unicode", "сервис", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVertexID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVertexID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
