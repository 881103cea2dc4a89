package lfpc

import (
	"fmt"
	"strings"
)

// IsValidationStable reports whether the last duration entries of history are
// all at or above threshold. A history shorter than duration is never stable.
func IsValidationStable(history []int, threshold, duration int) bool {
	if duration <= 0 || len(history) < duration {
		return false
	}
	for _, c := range history[len(history)-duration:] {
		if c < threshold {
			return false
		}
	}
	return true
}

// StabilityProfile is a named stability gate configuration.
type StabilityProfile struct {
	Name       string `json:"name"`
	HistoryCap int    `json:"history_cap"`
	Window     int    `json:"window"`
	Threshold  int    `json:"threshold"`
	// SampleRate is the frame rate, in Hz, the window was sized for.
	SampleRate float64 `json:"sample_rate"`
}

// Stability presets. At 10 Hz the strict window is about one second of a held
// sign.
var (
	ProfileLenientBeginner = StabilityProfile{
		Name:       "lenient",
		HistoryCap: 10,
		Window:     5,
		Threshold:  60,
		SampleRate: 10,
	}
	ProfileStrictStandard = StabilityProfile{
		Name:       "strict",
		HistoryCap: 30,
		Window:     30,
		Threshold:  80,
		SampleRate: 10,
	}
)

// ProfileByName returns a preset by name.
func ProfileByName(name string) (StabilityProfile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileStrictStandard.Name, "standard":
		return ProfileStrictStandard, nil
	case ProfileLenientBeginner.Name, "beginner":
		return ProfileLenientBeginner, nil
	default:
		return StabilityProfile{}, fmt.Errorf("unknown stability profile %q", name)
	}
}

// Validate rejects profiles that could never validate.
func (p StabilityProfile) Validate() error {
	if p.Window <= 0 {
		return fmt.Errorf("profile %q: window must be positive, got %d", p.Name, p.Window)
	}
	if p.HistoryCap < p.Window {
		return fmt.Errorf("profile %q: history cap %d cannot hold window %d", p.Name, p.HistoryCap, p.Window)
	}
	if p.Threshold < 0 || p.Threshold > 100 {
		return fmt.Errorf("profile %q: threshold must be within 0..100, got %d", p.Name, p.Threshold)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("profile %q: sample rate must be positive, got %f", p.Name, p.SampleRate)
	}
	return nil
}

// State is the stability gate state of a Session.
type State int

const (
	StateIdle State = iota
	StateAccumulating
	StateValidated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateValidated:
		return "validated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session holds the confidence history of one attempt at one target.
// It is not safe for concurrent use.
type Session struct {
	profile StabilityProfile
	target  *TargetSyllable
	history []int
	state   State
}

// NewSession creates an idle session for the given profile.
func NewSession(profile StabilityProfile) *Session {
	return &Session{
		profile: profile,
		history: make([]int, 0, profile.HistoryCap),
	}
}

// Profile returns the session's stability profile.
func (s *Session) Profile() StabilityProfile {
	return s.profile
}

// Target returns the current target, or nil.
func (s *Session) Target() *TargetSyllable {
	return s.target
}

// State returns the current gate state.
func (s *Session) State() State {
	return s.state
}

// SetTarget switches to a new target and resets the attempt.
func (s *Session) SetTarget(t *TargetSyllable) {
	s.target = t
	s.Reset()
}

// Reset clears the history and returns to Idle.
func (s *Session) Reset() {
	s.history = s.history[:0]
	s.state = StateIdle
}

// Observe records a match result. It returns true on the single frame that
// validates the attempt.
func (s *Session) Observe(result MatchResult) bool {
	return s.ObserveConfidence(result.Confidence)
}

// ObserveConfidence records a raw confidence value. Observations made while
// Validated are ignored until Reset.
func (s *Session) ObserveConfidence(confidence int) bool {
	if s.state == StateValidated {
		return false
	}

	if s.profile.HistoryCap > 0 && len(s.history) >= s.profile.HistoryCap {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, confidence)
	s.state = StateAccumulating

	if IsValidationStable(s.history, s.profile.Threshold, s.profile.Window) {
		s.state = StateValidated
		return true
	}
	return false
}

// History returns a copy of the confidence history, most recent last.
func (s *Session) History() []int {
	return append([]int(nil), s.history...)
}

// Progress returns the length of the current qualifying run, capped at the
// window size.
func (s *Session) Progress() int {
	run := 0
	for i := len(s.history) - 1; i >= 0 && run < s.profile.Window; i-- {
		if s.history[i] < s.profile.Threshold {
			break
		}
		run++
	}
	return run
}
