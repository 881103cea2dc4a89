// Package landmark holds the 21-point hand model shared by the tracker, the
// matching engine and the API: geometry helpers, the wire frame decoder and
// synthetic hands for tests. It has no cgo dependencies.
package landmark

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Digit order used by the configuration estimator: thumb, index, middle,
// ring, pinky.
const (
	DigitThumb = iota
	DigitIndex
	DigitMiddle
	DigitRing
	DigitPinky
	NumDigits
)

// Point3D represents a landmark in the tracker's coordinate space.
// Z is approximate and defaults to 0 when the tracker does not report it.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of a single tracked hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64               `json:"score,omitempty"`
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// FrameFromPoints builds a hand from an in-process point slice.
// Returns nil unless exactly NumLandmarks points are given.
func FrameFromPoints(points []Point3D) *HandLandmarks {
	if len(points) != NumLandmarks {
		return nil
	}
	h := &HandLandmarks{}
	copy(h.Points[:], points)
	return h
}

// Translate returns a copy of the hand shifted by (dx, dy).
func (h *HandLandmarks) Translate(dx, dy float64) *HandLandmarks {
	if h == nil {
		return nil
	}
	moved := *h
	for i := range moved.Points {
		moved.Points[i].X += dx
		moved.Points[i].Y += dy
	}
	return &moved
}

// Recenter returns a copy of the hand with every point expressed relative to
// the wrist. Configuration-distance comparisons use it to ignore where the
// hand sits in the frame.
func (h *HandLandmarks) Recenter() *HandLandmarks {
	if h == nil {
		return nil
	}

	recentered := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		recentered.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	return recentered
}

// Normalize recenters the hand on the wrist and scales it so that the
// distance from wrist to middle finger MCP is 1.0.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	normalized := h.Recenter()
	if normalized == nil {
		return nil
	}

	scale := Distance(Point3D{}, normalized.Points[MiddleMCP])

	// Avoid division by zero
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}

// PrimaryHand returns the highest scoring hand, or nil when none was detected.
func PrimaryHand(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(hands); i++ {
		if hands[i].Score > hands[best].Score {
			best = i
		}
	}
	h := hands[best]
	return &h
}
