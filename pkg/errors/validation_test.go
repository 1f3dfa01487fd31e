package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "checkout-flow", false},
		{"valid with underscore", "order_pipeline", false},
		{"valid with dot", "team.billing", false},
		{"valid with space", "nightly sync", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGraphID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "3b9c6f0e-8d2a-4f1b-9c3d-57a2e8b6f4a1", false},
		{"valid short", "g1", false},
		{"valid with underscore", "run_42", false},

		{"empty", "", true},
		{"leading dash", "-abc", true},
		{"path separator", "a/b", true},
		{"dot", "a.b", true},
		{"too long", string(make([]byte, 200)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGraphID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGraphID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGraphIDRejectsTraversal(t *testing.T) {
	for _, id := range []string{"../secrets", "..", "a%2Fb", "a b"} {
		if err := ValidateGraphID(id); err == nil {
			t.Errorf("ValidateGraphID(%q) = nil, want error", id)
		}
	}
}
