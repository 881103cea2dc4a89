// Package lfpc implements the cued speech (Langue française Parlée Complétée)
// hand matching engine: position and configuration estimation from hand
// landmarks, syllable scoring and the temporal stability gate.
//
// Every function in this package is synchronous and free of shared state.
// The only mutable value is Session, which is owned by a single caller.
package lfpc

import (
	"errors"
	"fmt"
)

// MatcherTuning collects every threshold used by the estimators and the
// syllable matcher. The zero value is not usable; start from DefaultTuning.
type MatcherTuning struct {
	// ReferenceHeight is the frame height, in tracker units, used to turn a
	// y-coordinate into a ratio.
	ReferenceHeight float64 `json:"reference_height"`

	// ZoneBounds are the upper (exclusive) ratio limits of zones 1 to 4.
	// Anything at or beyond the last bound is zone 5.
	ZoneBounds [4]float64 `json:"zone_bounds"`

	// PositionScale maps a zone difference of 0, 1 and 2 to a confidence.
	PositionScale [3]int `json:"position_scale"`
	// PositionFloor is the confidence for any larger zone difference.
	PositionFloor int `json:"position_floor"`

	ExactConfigConfidence int `json:"exact_config_confidence"`
	GroupConfigConfidence int `json:"group_config_confidence"`

	// ConfigHardGate: a required configuration scoring below it can never validate.
	ConfigHardGate int `json:"config_hard_gate"`
	// ValidThreshold is the minimum overall confidence for a valid match.
	ValidThreshold int `json:"valid_threshold"`
	// AlmostThreshold selects the "almost there" feedback.
	AlmostThreshold int `json:"almost_threshold"`
	// PositionHintThreshold selects the position hint feedback.
	PositionHintThreshold int `json:"position_hint_threshold"`

	// FingerAmbiguity is the half-width of the tip/joint distance ratio band
	// around 1.0 inside which a finger counts as ambiguously classified.
	FingerAmbiguity float64 `json:"finger_ambiguity"`
}

// DefaultTuning returns the thresholds the engine ships with.
func DefaultTuning() MatcherTuning {
	return MatcherTuning{
		ReferenceHeight:       360,
		ZoneBounds:            [4]float64{0.20, 0.35, 0.50, 0.65},
		PositionScale:         [3]int{100, 95, 85},
		PositionFloor:         65,
		ExactConfigConfidence: 100,
		GroupConfigConfidence: 80,
		ConfigHardGate:        70,
		ValidThreshold:        60,
		AlmostThreshold:       40,
		PositionHintThreshold: 40,
		FingerAmbiguity:       0.10,
	}
}

// Validate checks that the tuning is internally consistent.
func (t MatcherTuning) Validate() error {
	if t.ReferenceHeight <= 0 {
		return errors.New("reference_height must be positive")
	}
	for i := 1; i < len(t.ZoneBounds); i++ {
		if t.ZoneBounds[i] <= t.ZoneBounds[i-1] {
			return fmt.Errorf("zone_bounds must be strictly increasing, got %v", t.ZoneBounds)
		}
	}
	if t.ZoneBounds[0] <= 0 {
		return fmt.Errorf("zone_bounds must be positive, got %v", t.ZoneBounds)
	}

	scores := map[string]int{
		"position_floor":          t.PositionFloor,
		"exact_config_confidence": t.ExactConfigConfidence,
		"group_config_confidence": t.GroupConfigConfidence,
		"config_hard_gate":        t.ConfigHardGate,
		"valid_threshold":         t.ValidThreshold,
		"almost_threshold":        t.AlmostThreshold,
		"position_hint_threshold": t.PositionHintThreshold,
	}
	for i, v := range t.PositionScale {
		scores[fmt.Sprintf("position_scale[%d]", i)] = v
	}
	for name, v := range scores {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be within 0..100, got %d", name, v)
		}
	}

	if t.AlmostThreshold > t.ValidThreshold {
		return fmt.Errorf("almost_threshold (%d) must not exceed valid_threshold (%d)", t.AlmostThreshold, t.ValidThreshold)
	}
	if t.FingerAmbiguity < 0 || t.FingerAmbiguity >= 1 {
		return fmt.Errorf("finger_ambiguity must be within [0, 1), got %f", t.FingerAmbiguity)
	}
	return nil
}
