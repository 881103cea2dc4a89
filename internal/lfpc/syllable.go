package lfpc

import (
	"fmt"
	"math"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

// Learner-facing feedback messages.
const (
	FeedbackNoHand   = "Aucune main détectée"
	FeedbackNoTarget = "Aucune syllabe cible"
	FeedbackSuccess  = "Parfait ! Syllabe reconnue"
	FeedbackAlmost   = "Presque ! Ajustez légèrement votre geste"
	FeedbackNoMatch  = "Geste non reconnu, réessayez"
)

// Outcome classifies a match result for the host application.
type Outcome string

const (
	OutcomeNoHand   Outcome = "no_hand"
	OutcomeNoTarget Outcome = "no_target"
	// OutcomePartialSpec means the target requires neither a configuration
	// nor a position. It scores 0 and never validates.
	OutcomePartialSpec Outcome = "partial_spec"
	OutcomeMatched     Outcome = "matched"
	OutcomeMismatch    Outcome = "mismatch"
)

// TargetSyllable describes what the learner must produce.
type TargetSyllable struct {
	Text               string  `json:"text"`
	Consonne           *string `json:"consonne"`
	Voyelle            *string `json:"voyelle"`
	HandSignKey        *string `json:"hand_sign_key"`
	HandPositionConfig *int    `json:"hand_position_config"`
	Description        string  `json:"description"`
}

// NewTarget builds a target. An empty key or a zero zone leaves that part
// unconstrained.
func NewTarget(text, key string, zone Zone) *TargetSyllable {
	t := &TargetSyllable{Text: text}
	if key != "" {
		t.HandSignKey = &key
	}
	if zone != 0 {
		z := int(zone)
		t.HandPositionConfig = &z
	}
	return t
}

// RequiresConfiguration reports whether a hand shape is required.
func (t *TargetSyllable) RequiresConfiguration() bool {
	return t.HandSignKey != nil && *t.HandSignKey != ""
}

// RequiresPosition reports whether a face position is required.
func (t *TargetSyllable) RequiresPosition() bool {
	return t.HandPositionConfig != nil
}

// Detection holds the estimator outputs for one frame.
type Detection struct {
	Position Zone   `json:"position"`
	Config   string `json:"config"`
}

// Detect runs both estimators on a hand.
func Detect(hand *landmark.HandLandmarks, tuning MatcherTuning) Detection {
	return Detection{
		Position: EstimatePosition(hand, tuning),
		Config:   EstimateConfiguration(hand, tuning).Key,
	}
}

// MatchDetails exposes the intermediate scores of a match.
type MatchDetails struct {
	DetectedPosition   Zone   `json:"detectedPosition"`
	DetectedConfig     string `json:"detectedConfig"`
	PositionConfidence int    `json:"positionConfidence"`
	ConfigConfidence   int    `json:"configConfidence"`
}

// MatchResult is recomputed for every frame.
type MatchResult struct {
	IsValid    bool          `json:"isValid"`
	Confidence int           `json:"confidence"`
	Feedback   string        `json:"feedback"`
	Details    *MatchDetails `json:"details"`
	Outcome    Outcome       `json:"outcome"`
}

// Matcher scores hands against target syllables. It holds no per-frame
// state and is safe for concurrent use.
type Matcher struct {
	tuning MatcherTuning
	policy GroupPolicy
}

// NewMatcher creates a Matcher with the given tuning and group policy.
func NewMatcher(tuning MatcherTuning, policy GroupPolicy) *Matcher {
	if policy == "" {
		policy = PolicyGroupCredit
	}
	return &Matcher{tuning: tuning, policy: policy}
}

// DefaultMatcher uses DefaultTuning and PolicyGroupCredit.
func DefaultMatcher() *Matcher {
	return NewMatcher(DefaultTuning(), PolicyGroupCredit)
}

// Tuning returns the matcher's thresholds.
func (m *Matcher) Tuning() MatcherTuning {
	return m.tuning
}

// Policy returns the matcher's group policy.
func (m *Matcher) Policy() GroupPolicy {
	return m.policy
}

// MatchSyllable scores a hand with the default matcher.
func MatchSyllable(hand *landmark.HandLandmarks, target *TargetSyllable) MatchResult {
	return DefaultMatcher().Match(hand, target)
}

// Match estimates position and configuration from the hand, then scores them.
// A nil hand is "no hand detected".
func (m *Matcher) Match(hand *landmark.HandLandmarks, target *TargetSyllable) MatchResult {
	if hand == nil {
		return noHand()
	}
	if target == nil {
		return noTarget()
	}
	return m.Score(Detect(hand, m.tuning), target)
}

// MatchPoints matches a raw point list. Anything other than exactly 21 points
// is treated as no hand.
func (m *Matcher) MatchPoints(points []landmark.Point3D, target *TargetSyllable) MatchResult {
	return m.Match(landmark.FrameFromPoints(points), target)
}

// MatchFrame decodes a wire frame and matches it. A frame that fails to parse
// is treated as no hand.
func (m *Matcher) MatchFrame(raw []byte, target *TargetSyllable) MatchResult {
	hand, err := landmark.ParseFrame(raw)
	if err != nil {
		hand = nil
	}
	return m.Match(hand, target)
}

func noHand() MatchResult {
	return MatchResult{Feedback: FeedbackNoHand, Outcome: OutcomeNoHand}
}

func noTarget() MatchResult {
	return MatchResult{Feedback: FeedbackNoTarget, Outcome: OutcomeNoTarget}
}

// PositionConfidence grades a detected zone against the target zone.
func (m *Matcher) PositionConfidence(detected, target Zone) int {
	diff := ZoneDistance(detected, target)
	if diff < len(m.tuning.PositionScale) {
		return m.tuning.PositionScale[diff]
	}
	return m.tuning.PositionFloor
}

// ConfigConfidence grades a detected key against the target key.
// A wrong shape gets no partial credit.
func (m *Matcher) ConfigConfidence(detected, target string) int {
	d, t := normalizeKey(detected), normalizeKey(target)
	switch {
	case d != "" && d == t:
		return m.tuning.ExactConfigConfidence
	case m.policy == PolicyGroupCredit && SameGroup(d, t):
		return m.tuning.GroupConfigConfidence
	default:
		return 0
	}
}

// Score compares already-detected values with the target.
func (m *Matcher) Score(det Detection, target *TargetSyllable) MatchResult {
	if target == nil {
		return noTarget()
	}

	needConfig := target.RequiresConfiguration()
	needPosition := target.RequiresPosition()

	positionConf := 100
	if needPosition {
		positionConf = m.PositionConfidence(det.Position, Zone(*target.HandPositionConfig))
	}

	configConf := 100
	if needConfig {
		configConf = m.ConfigConfidence(det.Config, *target.HandSignKey)
	}

	var overall float64
	switch {
	case needConfig && needPosition:
		if configConf < m.tuning.ConfigHardGate {
			// The weaker signal wins so a good position cannot hide a wrong shape.
			overall = float64(min(configConf, positionConf))
		} else {
			overall = float64(configConf+positionConf) / 2
		}
	case needPosition:
		overall = float64(positionConf)
	case needConfig:
		overall = float64(configConf)
	default:
		overall = 0
	}

	configGateFailed := needConfig && configConf < m.tuning.ConfigHardGate
	isValid := overall >= float64(m.tuning.ValidThreshold) && !configGateFailed

	result := MatchResult{
		IsValid:    isValid,
		Confidence: int(math.Round(overall)),
		Details: &MatchDetails{
			DetectedPosition:   det.Position,
			DetectedConfig:     det.Config,
			PositionConfidence: positionConf,
			ConfigConfidence:   configConf,
		},
	}

	switch {
	case configConf < m.tuning.ConfigHardGate:
		result.Feedback = fmt.Sprintf("Formez la configuration %s", *target.HandSignKey)
	case positionConf < m.tuning.PositionHintThreshold:
		want := Zone(*target.HandPositionConfig)
		result.Feedback = fmt.Sprintf("Positionnez votre main au niveau de la position %d (%s)", want, want.Label())
	case isValid:
		result.Feedback = FeedbackSuccess
	case overall >= float64(m.tuning.AlmostThreshold):
		result.Feedback = FeedbackAlmost
	default:
		result.Feedback = FeedbackNoMatch
	}

	switch {
	case !needConfig && !needPosition:
		result.Outcome = OutcomePartialSpec
	case isValid:
		result.Outcome = OutcomeMatched
	default:
		result.Outcome = OutcomeMismatch
	}

	return result
}
