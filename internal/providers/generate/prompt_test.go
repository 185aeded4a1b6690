package generate

import (
	"strings"
	"testing"

	"tryon/internal/domain"
)

func TestBuildPromptPreservation(t *testing.T) {
	p := BuildPrompt(domain.Preferences{
		PreserveFace:       true,
		PreserveBackground: true,
		RealismLevel:       3,
	}, "jacket")

	if !strings.Contains(p, "jacket") {
		t.Fatalf("BuildPrompt() missing garment type: %q", p)
	}
	if !strings.Contains(p, "face") {
		t.Fatalf("BuildPrompt() missing face preservation: %q", p)
	}
	if !strings.Contains(p, "background") {
		t.Fatalf("BuildPrompt() missing background preservation: %q", p)
	}
}

func TestBuildPromptOmitsDisabledClauses(t *testing.T) {
	p := BuildPrompt(domain.Preferences{RealismLevel: 3}, "dress")
	if strings.Contains(p, "face") || strings.Contains(p, "background") {
		t.Fatalf("BuildPrompt() kept disabled clauses: %q", p)
	}
}

func TestBuildPromptRealismLevels(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, realismInstructions[0]},
		{5, realismInstructions[4]},
		{0, realismInstructions[domain.DefaultRealismLevel-1]},
		{9, realismInstructions[domain.DefaultRealismLevel-1]},
	}
	for _, tt := range tests {
		p := BuildPrompt(domain.Preferences{RealismLevel: tt.level}, "")
		if !strings.Contains(p, tt.want) {
			t.Fatalf("BuildPrompt(level=%d) = %q, missing %q", tt.level, p, tt.want)
		}
	}
}

func TestBuildPromptDefaultGarmentType(t *testing.T) {
	p := BuildPrompt(domain.Preferences{RealismLevel: 3}, "")
	if !strings.Contains(p, "provided garment") {
		t.Fatalf("BuildPrompt() = %q, want generic garment wording", p)
	}
}
