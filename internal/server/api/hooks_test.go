package api

import (
	"net/http"
	"testing"

	"github.com/ayusman/cuedspeech/internal/store"
)

func TestHookHandler_Bindings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/hooks", "")
	var hooks listHooksResponse
	decode(t, rec, &hooks)
	if len(hooks.Hooks) != 0 {
		t.Errorf("expected no hooks without a manager, got %d", len(hooks.Hooks))
	}

	rec = env.do(t, http.MethodPost, "/api/hooks/bindings",
		`{"hook_name":"progress-log","event":"validated","config":{"file":"/tmp/p.jsonl"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var b store.HookBinding
	decode(t, rec, &b)
	if !b.Enabled || b.ID == "" {
		t.Errorf("expected an enabled binding with an ID, got %+v", b)
	}

	rec = env.do(t, http.MethodPut, "/api/hooks/bindings/"+b.ID,
		`{"hook_name":"progress-log","event":"skipped","enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	decode(t, rec, &b)
	if b.Enabled || b.Event != "skipped" {
		t.Errorf("update not applied: %+v", b)
	}

	rec = env.do(t, http.MethodGet, "/api/hooks/bindings", "")
	var list listBindingsResponse
	decode(t, rec, &list)
	if len(list.Bindings) != 1 {
		t.Errorf("expected 1 binding, got %d", len(list.Bindings))
	}

	if rec := env.do(t, http.MethodPost, "/api/hooks/bindings", `{"hook_name":"x","event":"clicked"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for unknown event, got %d", http.StatusBadRequest, rec.Code)
	}

	if rec := env.do(t, http.MethodDelete, "/api/hooks/bindings/"+b.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/hooks/bindings/"+b.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d on second delete, got %d", http.StatusNotFound, rec.Code)
	}
}
