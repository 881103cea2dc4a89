package lfpc

import "github.com/ayusman/cuedspeech/internal/landmark"

// Zone is a vertical band relative to the face, numbered 1 (top) to 5.
// The zero value means "no position".
type Zone int

const (
	ZoneEye Zone = iota + 1
	ZoneSide
	ZoneMouth
	ZoneChin
	ZoneNeck
)

var zoneLabels = map[Zone]string{
	ZoneEye:   "œil",
	ZoneSide:  "côté",
	ZoneMouth: "bouche",
	ZoneChin:  "menton",
	ZoneNeck:  "cou",
}

// Valid reports whether z is one of the five zones.
func (z Zone) Valid() bool {
	return z >= ZoneEye && z <= ZoneNeck
}

// Label returns the French name of the zone used in learner feedback.
func (z Zone) Label() string {
	if l, ok := zoneLabels[z]; ok {
		return l
	}
	return "inconnue"
}

// ZoneDistance is the number of bands separating two zones.
func ZoneDistance(a, b Zone) int {
	d := int(a - b)
	if d < 0 {
		return -d
	}
	return d
}

// VerticalRatio averages the wrist and middle fingertip heights and divides
// by the reference height.
func VerticalRatio(hand *landmark.HandLandmarks, tuning MatcherTuning) float64 {
	avg := (hand.Points[landmark.Wrist].Y + hand.Points[landmark.MiddleTip].Y) / 2
	return avg / tuning.ReferenceHeight
}

// EstimatePosition buckets the hand's vertical placement into a zone.
// Bounds are compared with a strict "<", so a ratio exactly equal to a bound
// belongs to the zone after it. Returns 0 for a nil hand.
func EstimatePosition(hand *landmark.HandLandmarks, tuning MatcherTuning) Zone {
	if hand == nil {
		return 0
	}
	return zoneForRatio(VerticalRatio(hand, tuning), tuning)
}

func zoneForRatio(y float64, tuning MatcherTuning) Zone {
	for i, bound := range tuning.ZoneBounds {
		if y < bound {
			return Zone(i + 1)
		}
	}
	return ZoneNeck
}
