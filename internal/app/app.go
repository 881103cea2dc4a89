// Package app runs the camera practice loop: frames are read from a webcam,
// hands are detected, and each hand is scored against the current target
// syllable until the stability gate validates it.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/cuedspeech/internal/capture"
	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/detector"
	"github.com/ayusman/cuedspeech/internal/gesture"
	"github.com/ayusman/cuedspeech/internal/hook"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

// ErrNoSyllables is returned by NextTarget when nothing is queued.
var ErrNoSyllables = errors.New("no syllables to practice")

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store
	// Engine defaults to config.DefaultEngine.
	Engine  *config.Engine
	Profile string
	// Level restricts the practice queue to one syllable level. Empty means
	// every level.
	Level    string
	CameraID int
	// Camera and Detector override the device camera and MediaPipe.
	Camera     capture.Camera
	Detector   detector.Detector
	References *gesture.ReferenceMatcher
	Dispatcher *hook.Dispatcher
	// AutoAdvance moves to the next queued syllable after a validation.
	AutoAdvance bool
}

// EventType tells what an Event reports.
type EventType string

const (
	EventResult    EventType = "result"
	EventValidated EventType = "validated"
	EventTarget    EventType = "target"
)

// Event is delivered to callbacks after each processed frame and on target
// changes.
type Event struct {
	Type       EventType
	Target     *lfpc.TargetSyllable
	Result     lfpc.MatchResult
	State      lfpc.State
	Progress   int
	Hint       *gesture.Match
	Validation *store.Validation
}

// Callback receives practice events. It runs synchronously on the goroutine
// that produced the event and must not block.
type Callback func(Event)

// App is the practice application.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	matcher    *lfpc.Matcher
	references *gesture.ReferenceMatcher
	session    *lfpc.Session

	queue    []*store.Syllable
	queuePos int
	current  *store.Syllable

	callbacks []Callback
	enabled   bool
	mu        sync.RWMutex
	stopCh    chan struct{}
	done      chan struct{}
}

// New creates an App. It fails only when the stability profile is unknown.
func New(cfg Config) (*App, error) {
	if cfg.Engine == nil {
		cfg.Engine = config.DefaultEngine()
	}
	profile, err := cfg.Engine.Profile(cfg.Profile)
	if err != nil {
		return nil, err
	}
	if cfg.References == nil {
		cfg.References = gesture.NewReferenceMatcher()
	}

	a := &App{
		config:     cfg,
		camera:     cfg.Camera,
		detector:   cfg.Detector,
		matcher:    cfg.Engine.Matcher(),
		references: cfg.References,
		session:    lfpc.NewSession(profile),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.CameraID)
	}
	if a.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			logging.Info(nil, "using MediaPipe hand detection")
		} else {
			logging.Warn(logging.Fields{"error": err.Error()}, "MediaPipe not available, using mock detector")
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// SetEnabled enables or disables frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Profile returns the active stability profile.
func (a *App) Profile() lfpc.StabilityProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Profile()
}

// OnEvent registers a callback for practice events.
func (a *App) OnEvent(cb Callback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// LoadReferences loads the trained reference shapes from the store.
func (a *App) LoadReferences() error {
	if a.config.Store == nil {
		return nil
	}
	refs, err := a.config.Store.References().List()
	if err != nil {
		return err
	}
	for _, r := range refs {
		a.references.SetReference(&gesture.Reference{
			Key:       r.Key,
			Landmarks: r.Landmarks,
			Tolerance: r.Tolerance,
			Samples:   r.Samples,
		})
	}
	logging.Info(logging.Fields{"count": len(refs)}, "loaded reference shapes")
	return nil
}

// LoadSyllables fills the practice queue from the store.
func (a *App) LoadSyllables() error {
	if a.config.Store == nil {
		return nil
	}
	syllables, err := a.config.Store.Syllables().List(a.config.Level)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.queue = syllables
	a.queuePos = 0
	a.mu.Unlock()

	logging.Info(logging.Fields{"count": len(syllables), "level": a.config.Level}, "loaded practice syllables")
	return nil
}

// SetTarget practices an ad-hoc target that is not stored.
func (a *App) SetTarget(t *lfpc.TargetSyllable) {
	a.mu.Lock()
	a.current = nil
	a.session.SetTarget(t)
	ev := a.statusLocked(EventTarget)
	a.mu.Unlock()

	a.emit(ev)
}

// SetSyllable practices a stored syllable.
func (a *App) SetSyllable(s *store.Syllable) {
	a.mu.Lock()
	a.setSyllableLocked(s)
	ev := a.statusLocked(EventTarget)
	a.mu.Unlock()

	a.emit(ev)
}

func (a *App) setSyllableLocked(s *store.Syllable) {
	a.current = s
	if s == nil {
		a.session.SetTarget(nil)
		return
	}
	a.session.SetTarget(s.Target())
}

// Target returns the current target, or nil.
func (a *App) Target() *lfpc.TargetSyllable {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Target()
}

// NextTarget advances to the next queued syllable, wrapping around.
func (a *App) NextTarget() (*store.Syllable, error) {
	a.mu.Lock()
	s, err := a.nextLocked()
	ev := a.statusLocked(EventTarget)
	a.mu.Unlock()

	if err != nil {
		return nil, err
	}
	a.emit(ev)
	return s, nil
}

func (a *App) nextLocked() (*store.Syllable, error) {
	if len(a.queue) == 0 {
		return nil, ErrNoSyllables
	}
	s := a.queue[a.queuePos%len(a.queue)]
	a.queuePos = (a.queuePos + 1) % len(a.queue)
	a.setSyllableLocked(s)
	return s, nil
}

// Skip abandons the current target and moves to the next one. With nothing
// queued the target is cleared and Skip returns a nil syllable.
func (a *App) Skip() (*store.Syllable, error) {
	a.mu.RLock()
	target := a.session.Target()
	a.mu.RUnlock()

	if target != nil {
		a.fire(hook.EventSkipped, target, 0)
	}

	a.mu.Lock()
	var next *store.Syllable
	if len(a.queue) > 0 {
		next, _ = a.nextLocked()
	} else {
		a.setSyllableLocked(nil)
	}
	ev := a.statusLocked(EventTarget)
	a.mu.Unlock()

	a.emit(ev)
	return next, nil
}

// Retry clears the attempt and keeps the target.
func (a *App) Retry() {
	a.mu.Lock()
	a.session.Reset()
	ev := a.statusLocked(EventTarget)
	a.mu.Unlock()

	a.emit(ev)
}

// Start opens the camera and begins the practice loop at the profile's
// sample rate.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}

	rate := a.session.Profile().SampleRate
	if rate <= 0 {
		rate = capture.DefaultFPS
	}
	a.camera.SetFPS(int(rate))

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(time.Duration(float64(time.Second)/rate), a.stopCh, a.done)

	logging.Info(logging.Fields{"profile": a.session.Profile().Name, "rate": rate}, "practice pipeline started")
	return nil
}

// Stop halts the practice loop and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	if err := a.camera.Close(); err != nil {
		logging.Error(logging.Fields{"error": err.Error()}, "failed to close camera")
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			logging.Error(logging.Fields{"error": err.Error()}, "failed to close detector")
		}
	}

	logging.Info(nil, "practice pipeline stopped")
}

func (a *App) statusLocked(typ EventType) Event {
	return Event{
		Type:     typ,
		Target:   a.session.Target(),
		State:    a.session.State(),
		Progress: a.session.Progress(),
	}
}

func (a *App) emit(ev Event) {
	a.mu.RLock()
	callbacks := append([]Callback(nil), a.callbacks...)
	a.mu.RUnlock()

	for _, cb := range callbacks {
		cb(ev)
	}
}

// fire runs hooks in the background.
func (a *App) fire(event string, target *lfpc.TargetSyllable, confidence int) {
	d := a.config.Dispatcher
	if d == nil || target == nil {
		return
	}

	a.mu.RLock()
	profile := a.session.Profile()
	var syllableID string
	if a.current != nil {
		syllableID = a.current.ID
	}
	a.mu.RUnlock()

	req := hook.Request{
		Event:      event,
		Syllable:   target.Text,
		SyllableID: syllableID,
		Confidence: confidence,
		Profile:    profile.Name,
		Frames:     profile.Window,
		Timestamp:  time.Now(),
	}
	go d.Fire(context.Background(), req)
}
