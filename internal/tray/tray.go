// Package tray provides the system tray menu of the camera practice mode.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onSkip     func()
	onRetry    func()
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuTarget     *systray.MenuItem
	menuProgress   *systray.MenuItem
	menuLastResult *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback called when practice is paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSkip sets the callback called when the learner skips the target.
func (t *Tray) OnSkip(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSkip = fn
}

// OnRetry sets the callback called when the learner restarts the attempt.
func (t *Tray) OnRetry(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRetry = fn
}

// OnSettings sets the callback called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("LfPC")
	systray.SetTooltip("Entraînement au code LfPC")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume practice")
	systray.AddSeparator()

	t.menuTarget = systray.AddMenuItem(TargetTitle(""), "Current target syllable")
	t.menuTarget.Disable()
	t.menuProgress = systray.AddMenuItem(ProgressTitle(0, 0), "Stable frames in a row")
	t.menuProgress.Disable()
	t.menuLastResult = systray.AddMenuItem(LastResultTitle("", 0), "Last validated syllable")
	t.menuLastResult.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSkip := systray.AddMenuItem("Syllabe suivante", "Skip to the next syllable")
	menuRetry := systray.AddMenuItem("Recommencer", "Restart the current attempt")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Ouvrir l'interface...", "Open the practice page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quitter", "Quit")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSkip.ClickedCh:
				t.call(func() func() { return t.onSkip })
			case <-menuRetry.ClickedCh:
				t.call(func() func() { return t.onRetry })
			case <-menuSettings.ClickedCh:
				t.call(func() func() { return t.onSettings })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// call reads a callback under the lock and runs it outside of it.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

// SetTarget shows the current target syllable.
func (t *Tray) SetTarget(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuTarget != nil {
		t.menuTarget.SetTitle(TargetTitle(text))
	}
}

// SetProgress shows the length of the current stable run.
func (t *Tray) SetProgress(progress, window int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuProgress != nil {
		t.menuProgress.SetTitle(ProgressTitle(progress, window))
	}
}

// SetLastResult shows the last validated syllable.
func (t *Tray) SetLastResult(text string, confidence int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuLastResult != nil {
		t.menuLastResult.SetTitle(LastResultTitle(text, confidence))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Actif"
	}
	return "○ En pause"
}

// TargetTitle is the menu label of the target item.
func TargetTitle(text string) string {
	if text == "" {
		return "Cible : aucune"
	}
	return "Cible : " + text
}

// ProgressTitle is the menu label of the progress item.
func ProgressTitle(progress, window int) string {
	if window <= 0 {
		return "Progression : -"
	}
	return fmt.Sprintf("Progression : %d/%d", progress, window)
}

// LastResultTitle is the menu label of the last validation item.
func LastResultTitle(text string, confidence int) string {
	if text == "" {
		return "Dernière : aucune"
	}
	return fmt.Sprintf("Dernière : %s (%d%%)", text, confidence)
}
