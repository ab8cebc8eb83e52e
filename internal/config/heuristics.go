package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristics holds the tunable parameters of name matching and collection
// summarization. The defaults mirror long-standing behavior; a YAML file can
// override any field.
type Heuristics struct {
	// ThemeVocabulary is the fixed keyword set checked (case-insensitively,
	// as substrings) against extracted PDF text.
	ThemeVocabulary []string `yaml:"theme_vocabulary"`
	// DivergenceThreshold is the fraction of the mean word count beyond
	// which a document is flagged as unusually long or short.
	DivergenceThreshold float64 `yaml:"divergence_threshold"`
	// MatchLimit is the maximum number of fuzzy-match results considered
	// during name resolution.
	MatchLimit int `yaml:"match_limit"`
	// MatchCutoff is the minimum normalized similarity score for a fuzzy
	// match to count.
	MatchCutoff float64 `yaml:"match_cutoff"`
}

// DefaultHeuristics returns the compiled-in tuning values.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		ThemeVocabulary: []string{
			"equity", "inclusion", "assessment", "pedagogy", "curriculum",
			"motivation", "feedback", "collaboration", "engagement", "literacy",
		},
		DivergenceThreshold: 0.5,
		MatchLimit:          3,
		MatchCutoff:         0.4,
	}
}

// LoadHeuristics reads tuning overrides from a YAML file. An empty path
// returns the defaults. Fields absent from the file keep their defaults.
func LoadHeuristics(path string) (Heuristics, error) {
	h := DefaultHeuristics()
	if path == "" {
		return h, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("read heuristics file: %w", err)
	}
	if err := yaml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("parse heuristics file: %w", err)
	}

	if h.DivergenceThreshold <= 0 {
		h.DivergenceThreshold = DefaultHeuristics().DivergenceThreshold
	}
	if h.MatchLimit <= 0 {
		h.MatchLimit = DefaultHeuristics().MatchLimit
	}
	if h.MatchCutoff <= 0 || h.MatchCutoff > 1 {
		h.MatchCutoff = DefaultHeuristics().MatchCutoff
	}

	return h, nil
}
