package roomid

import (
	"testing"

	"github.com/lox/guandan/internal/randutil"
)

func TestGenerate(t *testing.T) {
	id := Generate()

	if len(id) != Length {
		t.Errorf("expected %d characters, got %d", Length, len(id))
	}

	if err := Validate(id); err != nil {
		t.Errorf("generated code failed validation: %v", err)
	}
}

func TestGenerateUnique(t *testing.T) {
	ids := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := Generate()
		if ids[id] {
			t.Errorf("duplicate code generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := NewGenerator(randutil.New(9)).Generate()
	b := NewGenerator(randutil.New(9)).Generate()

	if a != b {
		t.Errorf("same seed produced different codes: %s vs %s", a, b)
	}
	if err := Validate(a); err != nil {
		t.Errorf("seeded code failed validation: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  AB2CD3 "); got != "ab2cd3" {
		t.Errorf("expected ab2cd3, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid code", "ab2cd3", false},
		{"too short", "ab2", true},
		{"too long", "ab2cd3e", true},
		{"excluded letter", "abicd3", true},
		{"uppercase rejected", "AB2CD3", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
