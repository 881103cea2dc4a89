package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

func TestReferenceRepository_SaveGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.References()

	open := landmark.OpenPalmLandmarks(landmark.Point3D{})
	palm := open.Normalize()
	ref := &Reference{Key: "M", Tolerance: 3, Samples: 4, Landmarks: palm.Points[:]}
	if err := repo.Save(ref); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get("M")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Tolerance != 3 || got.Samples != 4 {
		t.Errorf("unexpected reference %+v", got)
	}
	if len(got.Landmarks) != landmark.NumLandmarks {
		t.Fatalf("expected %d landmarks, got %d", landmark.NumLandmarks, len(got.Landmarks))
	}
	if got.Landmarks[landmark.MiddleTip] != palm.Points[landmark.MiddleTip] {
		t.Errorf("landmark order not preserved")
	}

	// Saving again replaces the landmarks instead of appending.
	ref.Samples = 5
	if err := repo.Save(ref); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, _ = repo.Get("M")
	if got.Samples != 5 || len(got.Landmarks) != landmark.NumLandmarks {
		t.Errorf("unexpected reference after resave: samples %d landmarks %d", got.Samples, len(got.Landmarks))
	}
}

func TestReferenceRepository_ListDelete(t *testing.T) {
	s := newTestStore(t)
	repo := s.References()

	for _, key := range []string{"M", "B"} {
		if err := repo.Save(&Reference{Key: key, Tolerance: 4, Landmarks: make([]landmark.Point3D, landmark.NumLandmarks)}); err != nil {
			t.Fatalf("Save %s: %v", key, err)
		}
	}

	refs, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 2 || refs[0].Key != "B" || len(refs[1].Landmarks) != landmark.NumLandmarks {
		t.Errorf("unexpected references %+v", refs)
	}

	if err := repo.Delete("B"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get("B"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	var n int
	s.DB().QueryRow(`SELECT COUNT(*) FROM reference_landmarks WHERE reference_key = 'B'`).Scan(&n)
	if n != 0 {
		t.Errorf("expected landmarks to cascade, %d left", n)
	}
}

func TestSampleRepository_Append(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	total, err := repo.Append("J", []json.RawMessage{json.RawMessage(`[1]`), json.RawMessage(`[2]`)})
	if err != nil || total != 2 {
		t.Fatalf("Append: %d %v", total, err)
	}
	total, err = repo.Append("J", []json.RawMessage{json.RawMessage(`[3]`)})
	if err != nil || total != 3 {
		t.Fatalf("Append: %d %v", total, err)
	}

	samples, err := repo.GetByKey("J")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if len(samples) != 3 || string(samples[2].Data) != `[3]` || samples[2].SampleIndex != 2 {
		t.Errorf("unexpected samples %+v", samples)
	}

	if err := repo.DeleteByKey("J"); err != nil {
		t.Fatalf("DeleteByKey: %v", err)
	}
	samples, _ = repo.GetByKey("J")
	if len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}
