package gesture

import (
	"testing"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

func referenceFor(key string, hand landmark.HandLandmarks) *Reference {
	normalized := hand.Normalize()
	return &Reference{
		Key:       key,
		Landmarks: append([]landmark.Point3D(nil), normalized.Points[:]...),
		Tolerance: 2.0,
	}
}

func TestReferenceMatcher_Match(t *testing.T) {
	matcher := NewReferenceMatcher()
	matcher.SetReference(referenceFor("M", landmark.OpenPalmLandmarks(landmark.Point3D{})))
	matcher.SetReference(referenceFor("G", landmark.FistLandmarks(landmark.Point3D{})))

	// Same shape, different place and size.
	input := landmark.HandWithExtended(5, landmark.Point3D{X: 300, Y: 250}, 70)
	matches := matcher.Match(&input)

	if len(matches) == 0 {
		t.Fatal("expected at least one match for open palm input")
	}
	if matches[0].Key != "M" {
		t.Errorf("expected best match 'M', got %q", matches[0].Key)
	}
	if matches[0].Score < 0.9 {
		t.Errorf("expected high score (>0.9) for identical shape, got %f", matches[0].Score)
	}
	if matches[0].Distance > 0.1 {
		t.Errorf("expected low distance (<0.1) for identical shape, got %f", matches[0].Distance)
	}
}

func TestReferenceMatcher_NoMatch(t *testing.T) {
	matcher := NewReferenceMatcher()
	ref := referenceFor("M", landmark.OpenPalmLandmarks(landmark.Point3D{}))
	ref.Tolerance = 0.5
	matcher.SetReference(ref)

	fist := landmark.FistLandmarks(landmark.Point3D{})
	if matches := matcher.Match(&fist); len(matches) != 0 {
		t.Errorf("expected no match for a fist against an open palm, got %+v", matches)
	}
}

func TestReferenceMatcher_Ranking(t *testing.T) {
	matcher := NewReferenceMatcher()
	for n, key := range []string{"G", "J", "K", "L", "B", "M"} {
		ref := referenceFor(key, landmark.HandWithExtended(n, landmark.Point3D{}, 40))
		ref.Tolerance = 100
		matcher.SetReference(ref)
	}

	input := landmark.HandWithExtended(2, landmark.Point3D{X: 10, Y: 10}, 40)
	best, ok := matcher.Closest(&input)
	if !ok || best.Key != "K" {
		t.Errorf("expected closest K, got %+v", best)
	}

	matches := matcher.Match(&input)
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not sorted by score: %+v", matches)
		}
	}
}

func TestReferenceMatcher_Nil(t *testing.T) {
	matcher := NewReferenceMatcher()
	if matcher.Match(nil) != nil {
		t.Error("expected nil for nil hand")
	}
	if _, ok := matcher.Closest(nil); ok {
		t.Error("expected no closest match for nil hand")
	}
}

func TestReferenceMatcher_RemoveAndKeys(t *testing.T) {
	matcher := NewReferenceMatcher()
	matcher.SetReference(referenceFor("M", landmark.OpenPalmLandmarks(landmark.Point3D{})))
	matcher.SetReference(referenceFor("B", landmark.HandWithExtended(4, landmark.Point3D{}, 40)))
	matcher.SetReference(&Reference{Key: ""})
	matcher.SetReference(nil)

	keys := matcher.Keys()
	if len(keys) != 2 || keys[0] != "B" || keys[1] != "M" {
		t.Errorf("unexpected keys %v", keys)
	}

	matcher.RemoveReference("M")
	if keys := matcher.Keys(); len(keys) != 1 {
		t.Errorf("expected 1 key after removal, got %v", keys)
	}
}

func TestEuclideanDistance(t *testing.T) {
	a := []landmark.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}
	b := []landmark.Point3D{{X: 3, Y: 4, Z: 0}, {X: 1, Y: 1, Z: 1}}
	if d := euclideanDistance(a, b); d != 5 {
		t.Errorf("expected 5, got %f", d)
	}
	if d := euclideanDistance(nil, b); d != 0 {
		t.Errorf("expected 0 for empty input, got %f", d)
	}
}
