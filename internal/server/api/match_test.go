package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/store"
)

func TestMatchHandler_InlineTarget(t *testing.T) {
	env := newTestEnv(t)

	// One extended digit is key J; ratio 0.42 is the mouth zone.
	body := fmt.Sprintf(`{"landmarks":%s,"target":{"text":"pa","hand_sign_key":"J","hand_position_config":3}}`,
		frameJSON(t, 1, 0.42))
	rec := env.do(t, http.MethodPost, "/api/match", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp matchResponse
	decode(t, rec, &resp)
	if !resp.Result.IsValid || resp.Result.Confidence != 100 {
		t.Errorf("expected valid match at 100, got %+v", resp.Result)
	}
	if resp.Result.Outcome != lfpc.OutcomeMatched {
		t.Errorf("expected outcome %q, got %q", lfpc.OutcomeMatched, resp.Result.Outcome)
	}
	if resp.Result.Feedback != lfpc.FeedbackSuccess {
		t.Errorf("expected success feedback, got %q", resp.Result.Feedback)
	}
	if resp.Hint != nil {
		t.Errorf("expected no hint without references, got %+v", resp.Hint)
	}
}

func TestMatchHandler_StoredSyllable(t *testing.T) {
	env := newTestEnv(t)

	key, zone := "K", 1
	s := &store.Syllable{Text: "ka", HandSignKey: &key, HandPositionConfig: &zone}
	if err := env.store.Syllables().Create(s); err != nil {
		t.Fatalf("failed to create syllable: %v", err)
	}

	// Two digits is K, ratio 0.10 is the eye zone.
	body := fmt.Sprintf(`{"landmarks":%s,"syllable_id":%q}`, frameJSON(t, 2, 0.10), s.ID)
	rec := env.do(t, http.MethodPost, "/api/match", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp matchResponse
	decode(t, rec, &resp)
	if !resp.Result.IsValid {
		t.Errorf("expected valid match, got %+v", resp.Result)
	}
	if resp.Target == nil || resp.Target.Text != "ka" {
		t.Errorf("expected the stored target to be echoed, got %+v", resp.Target)
	}

	rec = env.do(t, http.MethodPost, "/api/match", `{"landmarks":null,"syllable_id":"missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for unknown syllable, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestMatchHandler_NoHand(t *testing.T) {
	env := newTestEnv(t)

	bodies := []string{
		`{"target":{"text":"pa","hand_sign_key":"J"}}`,
		`{"landmarks":null,"target":{"text":"pa","hand_sign_key":"J"}}`,
		`{"landmarks":[[1,2,3]],"target":{"text":"pa","hand_sign_key":"J"}}`,
	}
	for _, body := range bodies {
		rec := env.do(t, http.MethodPost, "/api/match", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		var resp matchResponse
		decode(t, rec, &resp)
		if resp.Result.Outcome != lfpc.OutcomeNoHand || resp.Result.Feedback != lfpc.FeedbackNoHand {
			t.Errorf("body %s: expected no hand, got %+v", body, resp.Result)
		}
		if resp.Result.Details != nil {
			t.Errorf("body %s: expected no details, got %+v", body, resp.Result.Details)
		}
	}
}

func TestMatchHandler_Policy(t *testing.T) {
	env := newTestEnv(t)
	frame := frameJSON(t, 1, 0.42)

	// P shares J's hand shape.
	target := `{"text":"pa","hand_sign_key":"P","hand_position_config":3}`

	tests := []struct {
		policy     string
		wantValid  bool
		confidence int
	}{
		{"", true, 90},
		{"group", true, 90},
		{"strict", false, 0},
	}
	for _, tt := range tests {
		t.Run("policy "+tt.policy, func(t *testing.T) {
			body := fmt.Sprintf(`{"landmarks":%s,"target":%s,"policy":%q}`, frame, target, tt.policy)
			rec := env.do(t, http.MethodPost, "/api/match", body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}
			var resp matchResponse
			decode(t, rec, &resp)
			if resp.Result.IsValid != tt.wantValid || resp.Result.Confidence != tt.confidence {
				t.Errorf("expected valid=%v confidence=%d, got %+v", tt.wantValid, tt.confidence, resp.Result)
			}
		})
	}

	rec := env.do(t, http.MethodPost, "/api/match", `{"target":`+target+`,"policy":"lenient"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for unknown policy, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestMatchHandler_MissingTarget(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/match", `{"landmarks":null}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestMatchHandler_Estimate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/configurations/estimate",
		fmt.Sprintf(`{"landmarks":%s}`, frameJSON(t, 4, 0.55)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp estimateResponse
	decode(t, rec, &resp)
	if !resp.HandDetected || resp.Configuration == nil {
		t.Fatalf("expected a detected hand, got %+v", resp)
	}
	if resp.Configuration.Key != "B" || resp.Configuration.Extended != 4 {
		t.Errorf("expected key B with 4 extended, got %+v", resp.Configuration)
	}
	if resp.Position != lfpc.ZoneChin || resp.PositionLabel != "menton" {
		t.Errorf("expected chin zone, got %d (%s)", resp.Position, resp.PositionLabel)
	}
	if len(resp.Group) != 2 {
		t.Errorf("expected group B/N, got %v", resp.Group)
	}

	rec = env.do(t, http.MethodPost, "/api/configurations/estimate", `{"landmarks":null}`)
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.HandDetected {
		t.Errorf("expected no hand for a null frame, got %d %+v", rec.Code, resp)
	}

	rec = env.do(t, http.MethodPost, "/api/configurations/estimate", `{"landmarks":[[0,0]]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for a short frame, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestMatchHandler_Compare(t *testing.T) {
	env := newTestEnv(t)
	frame := frameJSON(t, 1, 0.42)

	tests := []struct {
		configuration int
		want          int
	}{
		{1, 100}, // J is among P, D, J
		{2, 0},
	}
	for _, tt := range tests {
		rec := env.do(t, http.MethodPost, "/api/configurations/compare",
			fmt.Sprintf(`{"landmarks":%s,"configuration":%d}`, frame, tt.configuration))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		var resp compareResponse
		decode(t, rec, &resp)
		if resp.Confidence != tt.want {
			t.Errorf("configuration %d: expected confidence %d, got %d", tt.configuration, tt.want, resp.Confidence)
		}
	}

	rec := env.do(t, http.MethodPost, "/api/configurations/compare",
		fmt.Sprintf(`{"landmarks":%s,"configuration":9}`, frame))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for configuration 9, got %d", http.StatusBadRequest, rec.Code)
	}
}
