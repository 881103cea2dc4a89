package store

import (
	"testing"
	"time"
)

func TestValidationRepository_RecordList(t *testing.T) {
	s := newTestStore(t)

	syl := &Syllable{Text: "ma", HandSignKey: strp("M")}
	if err := s.Syllables().Create(syl); err != nil {
		t.Fatalf("Create syllable: %v", err)
	}

	repo := s.Validations()
	base := time.Now()
	for i, c := range []int{82, 95, 88} {
		v := &Validation{
			SyllableID:   &syl.ID,
			SyllableText: "ma",
			Confidence:   c,
			Profile:      "strict",
			Frames:       30,
			Source:       "test",
			CreatedAt:    base.Add(time.Duration(i-3) * time.Second),
		}
		if err := repo.Record(v); err != nil {
			t.Fatalf("Record: %v", err)
		}
		if len(v.ID) != 26 {
			t.Errorf("expected a ULID, got %q", v.ID)
		}
	}
	if err := repo.Record(&Validation{SyllableText: "pa", Confidence: 70, Profile: "lenient"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	all, err := repo.List("", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 || all[0].SyllableText != "pa" {
		t.Errorf("expected newest first, got %d rows", len(all))
	}

	mine, err := repo.List(syl.ID, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 2 || mine[0].Confidence != 88 {
		t.Errorf("unexpected filtered list %+v", mine)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 2 || stats[0].SyllableText != "ma" || stats[0].Count != 3 || stats[0].BestConfidence != 95 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestValidationRepository_SyllableDeleted(t *testing.T) {
	s := newTestStore(t)

	syl := &Syllable{Text: "ko"}
	if err := s.Syllables().Create(syl); err != nil {
		t.Fatalf("Create syllable: %v", err)
	}
	if err := s.Validations().Record(&Validation{SyllableID: &syl.ID, SyllableText: "ko", Confidence: 90, Profile: "strict"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Syllables().Delete(syl.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	all, err := s.Validations().List("", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].SyllableID != nil {
		t.Errorf("expected history to survive with a null syllable id, got %+v", all)
	}
}
