package tray

import "testing"

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TargetTitle(""), "Cible : aucune"},
		{TargetTitle("pa"), "Cible : pa"},
		{ProgressTitle(3, 5), "Progression : 3/5"},
		{ProgressTitle(0, 0), "Progression : -"},
		{LastResultTitle("", 0), "Dernière : aucune"},
		{LastResultTitle("ma", 90), "Dernière : ma (90%)"},
		{toggleTitle(true), "● Actif"},
		{toggleTitle(false), "○ En pause"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("tray should start enabled")
	}

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("unexpected toggle callbacks %v", got)
	}
	if !tr.IsEnabled() {
		t.Error("two toggles should leave the tray enabled")
	}
}

func TestTray_SettersBeforeReady(t *testing.T) {
	tr := New()
	// Menu items do not exist until Run; setters must not panic.
	tr.SetTarget("pa")
	tr.SetProgress(1, 5)
	tr.SetLastResult("pa", 100)

	called := false
	tr.OnSkip(func() { called = true })
	tr.call(func() func() { return tr.onSkip })
	if !called {
		t.Error("expected skip callback to run")
	}
}
