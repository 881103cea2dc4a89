package lfpc

import (
	"math"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

// digitJoints pairs each fingertip with the proximal joint it is compared to,
// thumb first.
var digitJoints = [landmark.NumDigits]struct{ tip, joint int }{
	{landmark.ThumbTip, landmark.ThumbIP},
	{landmark.IndexTip, landmark.IndexPIP},
	{landmark.MiddleTip, landmark.MiddlePIP},
	{landmark.RingTip, landmark.RingPIP},
	{landmark.PinkyTip, landmark.PinkyPIP},
}

// countKeys maps an extended-finger count to a configuration key.
var countKeys = [landmark.NumDigits + 1]string{"G", "J", "K", "L", "B", "M"}

// ConfigurationEstimate is the output of the configuration estimator.
type ConfigurationEstimate struct {
	Key      string                   `json:"key"`
	Extended int                      `json:"extended"`
	Fingers  [landmark.NumDigits]bool `json:"fingers"`
	// Confidence is the share of digits, in percent, whose extension was
	// decided outside the ambiguity band.
	Confidence int `json:"confidence"`
}

// KeyForCount returns the configuration key for an extended-finger count.
func KeyForCount(n int) string {
	if n < 0 || n >= len(countKeys) {
		return ""
	}
	return countKeys[n]
}

// EstimateConfiguration counts extended fingers and maps the count to a key.
//
// A digit is extended when its tip is further from the wrist than its
// proximal joint and the tip is above the joint on screen. The mapping is a
// coarse count and does not tell apart shapes with the same count.
func EstimateConfiguration(hand *landmark.HandLandmarks, tuning MatcherTuning) ConfigurationEstimate {
	if hand == nil {
		return ConfigurationEstimate{}
	}

	wrist := hand.Points[landmark.Wrist]
	var est ConfigurationEstimate
	decisive := 0

	for d, dj := range digitJoints {
		tip := hand.Points[dj.tip]
		joint := hand.Points[dj.joint]

		tipDist := landmark.Distance(wrist, tip)
		jointDist := landmark.Distance(wrist, joint)

		if tipDist > jointDist && tip.Y < joint.Y {
			est.Fingers[d] = true
			est.Extended++
		}

		if jointDist > 0 && math.Abs(tipDist/jointDist-1) > tuning.FingerAmbiguity {
			decisive++
		}
	}

	est.Key = KeyForCount(est.Extended)
	est.Confidence = decisive * 100 / landmark.NumDigits
	return est
}
