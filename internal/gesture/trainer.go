package gesture

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoSamples is returned when training is attempted without samples.
var ErrNoSamples = errors.New("no samples provided")

// Sample is a recorded reference sample. Landmarks accepts every frame
// encoding landmark.ParseFrame does.
type Sample struct {
	Key       string              `json:"key"`
	Landmarks jsoniter.RawMessage `json:"landmarks"`
	Timestamp int64               `json:"timestamp"`
}

// Trainer turns recorded samples into references.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// TrainStatic normalizes each sample and averages them point by point.
// A sample is either a Sample object or a bare landmark frame.
func (t *Trainer) TrainStatic(samples []jsoniter.RawMessage) ([]landmark.Point3D, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	var sum [landmark.NumLandmarks]landmark.Point3D
	for i, raw := range samples {
		hand, err := parseSample(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
		if hand == nil {
			return nil, fmt.Errorf("sample %d has no landmarks", i)
		}

		normalized := hand.Normalize()
		for p := range sum {
			sum[p].X += normalized.Points[p].X
			sum[p].Y += normalized.Points[p].Y
			sum[p].Z += normalized.Points[p].Z
		}
	}

	n := float64(len(samples))
	averaged := make([]landmark.Point3D, landmark.NumLandmarks)
	for p := range sum {
		averaged[p] = landmark.Point3D{
			X: sum[p].X / n,
			Y: sum[p].Y / n,
			Z: sum[p].Z / n,
		}
	}

	return averaged, nil
}

// Train builds a reference for key from samples.
func (t *Trainer) Train(key string, samples []jsoniter.RawMessage, tolerance float64) (*Reference, error) {
	landmarks, err := t.TrainStatic(samples)
	if err != nil {
		return nil, err
	}
	return &Reference{
		Key:       key,
		Landmarks: landmarks,
		Tolerance: tolerance,
		Samples:   len(samples),
	}, nil
}

func parseSample(raw []byte) (*landmark.HandLandmarks, error) {
	var s Sample
	if err := json.Unmarshal(raw, &s); err == nil && len(s.Landmarks) > 0 {
		return landmark.ParseFrame(s.Landmarks)
	}
	return landmark.ParseFrame(raw)
}
