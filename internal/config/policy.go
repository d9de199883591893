package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default analysis policy values.
const (
	DefaultResolutionThreshold = 50.0
	DefaultFuzzyCutoff         = 0.6
	DefaultMovingAverageWindow = 5
)

// Policy holds the tunable analysis parameters. Components receive these
// values explicitly.
type Policy struct {
	// ResolutionThreshold is the price in cents at or above which the
	// latest trade's side is guessed to have won.
	ResolutionThreshold float64 `yaml:"resolution_threshold"`
	// FuzzyCutoff is the minimum similarity for market name lookup; 0
	// requires an exact title or slug.
	FuzzyCutoff         float64 `yaml:"fuzzy_cutoff"`
	MovingAverageWindow int     `yaml:"moving_average_window"`
}

func DefaultPolicy() Policy {
	return Policy{
		ResolutionThreshold: DefaultResolutionThreshold,
		FuzzyCutoff:         DefaultFuzzyCutoff,
		MovingAverageWindow: DefaultMovingAverageWindow,
	}
}

// LoadPolicy reads a YAML policy file. ${VAR} references are expanded from
// the environment and omitted fields take their defaults. Fields present in
// the file are kept as written, zero included.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	p := DefaultPolicy()
	if err := yaml.Unmarshal([]byte(expanded), &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every value is in range.
func (p *Policy) Validate() error {
	if p.ResolutionThreshold < 0 || p.ResolutionThreshold > 100 {
		return fmt.Errorf("resolution_threshold must be between 0 and 100, got %v", p.ResolutionThreshold)
	}
	if p.FuzzyCutoff < 0 || p.FuzzyCutoff > 1 {
		return fmt.Errorf("fuzzy_cutoff must be between 0 and 1, got %v", p.FuzzyCutoff)
	}
	if p.MovingAverageWindow < 1 {
		return fmt.Errorf("moving_average_window must be >= 1, got %d", p.MovingAverageWindow)
	}
	return nil
}
