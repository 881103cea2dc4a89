package gesture

import (
	"errors"
	"math"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rawFrame(t *testing.T, h landmark.HandLandmarks) jsoniter.RawMessage {
	t.Helper()
	data, err := json.Marshal(h.Points[:])
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return data
}

func TestTrainer_TrainStatic(t *testing.T) {
	trainer := NewTrainer()

	small := landmark.OpenPalmLandmarks(landmark.Point3D{X: 10, Y: 10})
	large := landmark.HandWithExtended(5, landmark.Point3D{X: 200, Y: 300}, 90)

	samples := []jsoniter.RawMessage{
		rawFrame(t, small),
		jsoniter.RawMessage(`{"key":"M","landmarks":` + string(rawFrame(t, large)) + `,"timestamp":1000}`),
	}

	result, err := trainer.TrainStatic(samples)
	if err != nil {
		t.Fatalf("TrainStatic() error = %v", err)
	}
	if len(result) != landmark.NumLandmarks {
		t.Fatalf("expected %d landmarks, got %d", landmark.NumLandmarks, len(result))
	}

	// Both samples normalize to the same shape, so the average equals it.
	want := small.Normalize()
	for i, p := range result {
		if !floatEqual(p.X, want.Points[i].X) || !floatEqual(p.Y, want.Points[i].Y) {
			t.Fatalf("point %d: got (%f, %f), want (%f, %f)", i, p.X, p.Y, want.Points[i].X, want.Points[i].Y)
		}
	}
	if result[landmark.Wrist] != (landmark.Point3D{}) {
		t.Errorf("expected wrist at origin, got %+v", result[landmark.Wrist])
	}
}

func TestTrainer_TrainStatic_EmptySamples(t *testing.T) {
	_, err := NewTrainer().TrainStatic(nil)
	if !errors.Is(err, ErrNoSamples) {
		t.Errorf("expected ErrNoSamples, got %v", err)
	}
}

func TestTrainer_TrainStatic_BadSample(t *testing.T) {
	samples := []jsoniter.RawMessage{
		jsoniter.RawMessage(`[[0.1, 0.2]]`),
	}
	if _, err := NewTrainer().TrainStatic(samples); !errors.Is(err, landmark.ErrInvalidFrame) {
		t.Errorf("expected ErrInvalidFrame, got %v", err)
	}

	if _, err := NewTrainer().TrainStatic([]jsoniter.RawMessage{jsoniter.RawMessage(`null`)}); err == nil {
		t.Error("expected error for a null sample")
	}
}

func TestTrainer_Train(t *testing.T) {
	samples := []jsoniter.RawMessage{rawFrame(t, landmark.FistLandmarks(landmark.Point3D{}))}
	ref, err := NewTrainer().Train("G", samples, 1.5)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if ref.Key != "G" || ref.Samples != 1 || ref.Tolerance != 1.5 {
		t.Errorf("unexpected reference %+v", ref)
	}
}
