package errors

import (
	"testing"
)

func TestValidateRatio(t *testing.T) {
	tests := []struct {
		name    string
		ratio   uint64
		wantErr bool
	}{
		{"zero", 0, true},
		{"at bound", 5, true},
		{"just above", 6, false},
		{"large", 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRatio("ratio", tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRatio(%d) error = %v, wantErr %v", tt.ratio, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateAtLeast(t *testing.T) {
	if err := ValidateAtLeast("k", 0, 1); err == nil {
		t.Error("expected error for 0 < 1")
	}
	if err := ValidateAtLeast("k", 1, 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "devices/grid.json", false},
		{"valid absolute", "/tmp/circuit.toml", false},
		{"empty", "", true},
		{"too long", string(make([]byte, 5000)), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	got, err := ValidateFormat(" SVG ", "dot", "svg")
	if err != nil || got != "svg" {
		t.Errorf("ValidateFormat = %q, %v; want svg, nil", got, err)
	}
	if _, err := ValidateFormat("png", "dot", "svg"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
