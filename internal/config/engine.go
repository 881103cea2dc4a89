package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/lfpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine is the JSON tuning file: matcher thresholds, group policy and
// stability profiles.
type Engine struct {
	Tuning      lfpc.MatcherTuning               `json:"tuning"`
	GroupPolicy lfpc.GroupPolicy                 `json:"group_policy"`
	Profiles    map[string]lfpc.StabilityProfile `json:"profiles"`
}

// DefaultEngine returns the built-in tuning and both stability presets.
func DefaultEngine() *Engine {
	return &Engine{
		Tuning:      lfpc.DefaultTuning(),
		GroupPolicy: lfpc.PolicyGroupCredit,
		Profiles: map[string]lfpc.StabilityProfile{
			lfpc.ProfileLenientBeginner.Name: lfpc.ProfileLenientBeginner,
			lfpc.ProfileStrictStandard.Name:  lfpc.ProfileStrictStandard,
		},
	}
}

// LoadEngine reads a tuning file over the defaults. Fields absent from the
// file keep their default value.
func LoadEngine(filename string) (*Engine, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine config: %w", err)
	}

	e := DefaultEngine()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to parse engine config: %w", err)
	}
	for name, p := range e.Profiles {
		if p.Name == "" {
			p.Name = name
			e.Profiles[name] = p
		}
	}

	return e, nil
}

// LoadEngineOrDefault is LoadEngine, falling back to the defaults when the
// file does not exist.
func LoadEngineOrDefault(filename string) (*Engine, error) {
	e, err := LoadEngine(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultEngine(), nil
	}
	return e, err
}

// SaveToFile writes the engine config as indented JSON.
func (e *Engine) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal engine config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write engine config: %w", err)
	}
	return nil
}

// Validate checks the tuning, the policy and every profile.
func (e *Engine) Validate() error {
	if err := e.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if _, err := lfpc.ParseGroupPolicy(string(e.GroupPolicy)); err != nil {
		return err
	}
	for _, p := range e.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Matcher builds a matcher from the tuning and policy.
func (e *Engine) Matcher() *lfpc.Matcher {
	policy, err := lfpc.ParseGroupPolicy(string(e.GroupPolicy))
	if err != nil {
		policy = lfpc.PolicyGroupCredit
	}
	return lfpc.NewMatcher(e.Tuning, policy)
}

// Profile looks a stability profile up by name, then falls back to the
// built-in presets.
func (e *Engine) Profile(name string) (lfpc.StabilityProfile, error) {
	if p, ok := e.Profiles[name]; ok {
		return p, nil
	}
	return lfpc.ProfileByName(name)
}
