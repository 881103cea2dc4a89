package lfpc

import (
	"reflect"
	"testing"
)

func TestIsValidationStable(t *testing.T) {
	tests := []struct {
		name      string
		history   []int
		threshold int
		duration  int
		want      bool
	}{
		{"empty", nil, 80, 5, false},
		{"shorter than window", []int{100, 100, 100}, 80, 5, false},
		{"exact window", []int{80, 90, 100, 85, 81}, 80, 5, true},
		{"trailing run after lows", []int{0, 10, 90, 90, 90}, 80, 3, true},
		{"low inside window", []int{90, 90, 90, 90, 90, 79, 90, 90}, 80, 5, false},
		{"zero duration", []int{100}, 80, 0, false},
		{
			"trailing low value",
			[]int{90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 90, 55},
			80, 10, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationStable(tt.history, tt.threshold, tt.duration); got != tt.want {
				t.Errorf("IsValidationStable(%v, %d, %d) = %v, want %v", tt.history, tt.threshold, tt.duration, got, tt.want)
			}
		})
	}
}

func TestStabilityProfiles(t *testing.T) {
	for _, p := range []StabilityProfile{ProfileLenientBeginner, ProfileStrictStandard} {
		if err := p.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", p.Name, err)
		}
	}

	bad := StabilityProfile{Name: "broken", HistoryCap: 20, Window: 30, Threshold: 80, SampleRate: 10}
	if bad.Validate() == nil {
		t.Error("expected error when cap cannot hold window")
	}

	p, err := ProfileByName("beginner")
	if err != nil || p != ProfileLenientBeginner {
		t.Errorf("expected lenient profile, got %+v %v", p, err)
	}
	if _, err := ProfileByName("nope"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession(ProfileLenientBeginner)
	s.SetTarget(NewTarget("ma", "M", ZoneSide))

	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}

	for i := 0; i < 4; i++ {
		if s.ObserveConfidence(70) {
			t.Fatalf("validated too early at frame %d", i)
		}
	}
	if s.State() != StateAccumulating {
		t.Errorf("expected accumulating, got %s", s.State())
	}
	if s.Progress() != 4 {
		t.Errorf("expected progress 4, got %d", s.Progress())
	}

	if !s.ObserveConfidence(60) {
		t.Fatal("expected validation on fifth qualifying frame")
	}
	if s.State() != StateValidated {
		t.Errorf("expected validated, got %s", s.State())
	}

	// Exactly once.
	if s.ObserveConfidence(100) {
		t.Error("validation emitted twice")
	}
	if len(s.History()) != 5 {
		t.Errorf("observations after validation must be ignored, history %v", s.History())
	}

	s.Reset()
	if s.State() != StateIdle || len(s.History()) != 0 {
		t.Errorf("reset did not clear session: %s %v", s.State(), s.History())
	}
}

func TestSession_GapBreaksRun(t *testing.T) {
	s := NewSession(ProfileLenientBeginner)

	for _, c := range []int{90, 90, 90, 90, 0, 90, 90, 90, 90} {
		if s.ObserveConfidence(c) {
			t.Fatalf("unexpected validation, history %v", s.History())
		}
	}
	if !s.Observe(MatchResult{Confidence: 90}) {
		t.Fatalf("expected validation, history %v", s.History())
	}
}

func TestSession_HistoryCap(t *testing.T) {
	s := NewSession(StabilityProfile{Name: "t", HistoryCap: 3, Window: 3, Threshold: 101, SampleRate: 10})
	for i := 1; i <= 5; i++ {
		s.ObserveConfidence(i)
	}
	if got := s.History(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Errorf("expected most recent 3 entries, got %v", got)
	}

	h := s.History()
	h[0] = 99
	if s.History()[0] != 3 {
		t.Error("History must return a copy")
	}
}

func TestSession_SetTargetResets(t *testing.T) {
	s := NewSession(ProfileStrictStandard)
	for i := 0; i < 29; i++ {
		s.ObserveConfidence(100)
	}
	s.SetTarget(NewTarget("pa", "J", ZoneSide))
	if len(s.History()) != 0 {
		t.Fatalf("stale history survived target change: %v", s.History())
	}
	if s.ObserveConfidence(100) {
		t.Error("single frame must not validate after target change")
	}
	if s.Target().Text != "pa" {
		t.Errorf("unexpected target %+v", s.Target())
	}
}
