// Package detector wraps hand tracking sources that turn camera frames into
// landmarks.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

// Detector is an opaque hand landmark source.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]landmark.HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. Cueing uses one hand.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// IdleShutdownSec stops the tracker process after this many idle seconds.
	IdleShutdownSec int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleShutdownSec: 30,
	}
}
