package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadHeuristics_EmptyPathReturnsDefaults(t *testing.T) {
	h, err := LoadHeuristics("")
	if err != nil {
		t.Fatalf("LoadHeuristics() error = %v", err)
	}

	if h.MatchLimit != 3 || h.MatchCutoff != 0.4 || h.DivergenceThreshold != 0.5 {
		t.Errorf("defaults = %+v", h)
	}
	if len(h.ThemeVocabulary) == 0 {
		t.Error("default vocabulary must not be empty")
	}
}

func TestLoadHeuristics_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	content := `
theme_vocabulary:
  - thermodynamics
  - entropy
divergence_threshold: 0.25
match_limit: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	h, err := LoadHeuristics(path)
	if err != nil {
		t.Fatalf("LoadHeuristics() error = %v", err)
	}

	if len(h.ThemeVocabulary) != 2 || h.ThemeVocabulary[0] != "thermodynamics" {
		t.Errorf("vocabulary = %v", h.ThemeVocabulary)
	}
	if h.DivergenceThreshold != 0.25 {
		t.Errorf("divergence threshold = %v", h.DivergenceThreshold)
	}
	if h.MatchLimit != 5 {
		t.Errorf("match limit = %d", h.MatchLimit)
	}
	if h.MatchCutoff != 0.4 {
		t.Errorf("unset fields keep defaults, cutoff = %v", h.MatchCutoff)
	}
}

func TestLoadHeuristics_InvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heuristics.yaml")
	content := `
divergence_threshold: -1
match_limit: 0
match_cutoff: 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	h, err := LoadHeuristics(path)
	if err != nil {
		t.Fatalf("LoadHeuristics() error = %v", err)
	}

	defaults := DefaultHeuristics()
	if h.DivergenceThreshold != defaults.DivergenceThreshold {
		t.Errorf("divergence threshold = %v", h.DivergenceThreshold)
	}
	if h.MatchLimit != defaults.MatchLimit {
		t.Errorf("match limit = %d", h.MatchLimit)
	}
	if h.MatchCutoff != defaults.MatchCutoff {
		t.Errorf("match cutoff = %v", h.MatchCutoff)
	}
}

func TestLoadHeuristics_MissingFile(t *testing.T) {
	if _, err := LoadHeuristics(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
