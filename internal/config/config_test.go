package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()
	if c.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", c.Port)
	}
	if c.QualityThreshold != 0.7 {
		t.Fatalf("QualityThreshold = %v, want 0.7", c.QualityThreshold)
	}
	if c.MaxRetries != 2 {
		t.Fatalf("MaxRetries = %d, want 2", c.MaxRetries)
	}
	if c.MaxImageSizeMB != 10 {
		t.Fatalf("MaxImageSizeMB = %d, want 10", c.MaxImageSizeMB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("QUALITY_THRESHOLD", "0.85")
	t.Setenv("SAVE_DEBUG_ARTIFACTS", "true")
	t.Setenv("POLL_TIMEOUT", "500ms")

	c := Load()
	if c.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", c.Port)
	}
	if c.QualityThreshold != 0.85 {
		t.Fatalf("QualityThreshold = %v, want 0.85", c.QualityThreshold)
	}
	if !c.SaveDebugArtifacts {
		t.Fatalf("SaveDebugArtifacts = false, want true")
	}
	if c.PollTimeout != 500*time.Millisecond {
		t.Fatalf("PollTimeout = %v, want 500ms", c.PollTimeout)
	}
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("MAX_RETRIES", "many")
	t.Setenv("QUALITY_THRESHOLD", "high")

	c := Load()
	if c.MaxRetries != 2 {
		t.Fatalf("MaxRetries = %d, want default 2", c.MaxRetries)
	}
	if c.QualityThreshold != 0.7 {
		t.Fatalf("QualityThreshold = %v, want default 0.7", c.QualityThreshold)
	}
}
