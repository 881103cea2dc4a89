package app

import (
	"time"

	"github.com/ayusman/cuedspeech/internal/hook"
	"github.com/ayusman/cuedspeech/internal/landmark"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

// runPipeline reads one frame per tick while enabled. A frame the camera or
// the detector fails on is skipped; a frame without a hand is observed with
// confidence 0 and breaks the current run.
func (a *App) runPipeline(interval time.Duration, stopCh, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var readErrors int
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				// Log the first failure of a streak only.
				if readErrors == 0 {
					logging.Warn(logging.Fields{"error": err.Error()}, "failed to read frame")
				}
				readErrors++
				continue
			}
			readErrors = 0

			d := a.Detector()
			hands, err := d.Detect(frame)
			frame.Close()
			if err != nil {
				logging.Warn(logging.Fields{"error": err.Error()}, "hand detection failed")
				continue
			}

			a.ProcessHands(hands)
		}
	}
}

// ProcessHands scores the primary hand against the current target, feeds the
// stability gate and emits the resulting event.
func (a *App) ProcessHands(hands []landmark.HandLandmarks) Event {
	hand := landmark.PrimaryHand(hands)

	a.mu.Lock()
	target := a.session.Target()
	result := a.matcher.Match(hand, target)
	validated := a.session.Observe(result)
	ev := a.statusLocked(EventResult)
	ev.Result = result
	if validated {
		ev.Type = EventValidated
		ev.Validation = a.newValidationLocked(target, result.Confidence)
	}
	a.mu.Unlock()

	if hand != nil {
		if m, ok := a.references.Closest(hand); ok {
			ev.Hint = &m
		}
	}

	if validated {
		a.record(ev.Validation)
		a.fire(hook.EventValidated, target, result.Confidence)
	}

	a.emit(ev)

	if validated && a.config.AutoAdvance {
		if _, err := a.NextTarget(); err != nil {
			logging.Debug(logging.Fields{"error": err.Error()}, "no next syllable")
		}
	}
	return ev
}

func (a *App) newValidationLocked(target *lfpc.TargetSyllable, confidence int) *store.Validation {
	profile := a.session.Profile()
	v := &store.Validation{
		SyllableText: target.Text,
		Confidence:   confidence,
		Profile:      profile.Name,
		Frames:       profile.Window,
		Source:       "camera",
	}
	if a.current != nil {
		id := a.current.ID
		v.SyllableID = &id
	}
	return v
}

func (a *App) record(v *store.Validation) {
	logging.Info(logging.Fields{
		"syllable":   v.SyllableText,
		"confidence": v.Confidence,
		"profile":    v.Profile,
	}, "syllable validated")

	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Validations().Record(v); err != nil {
		logging.Error(logging.Fields{"error": err.Error(), "syllable": v.SyllableText}, "failed to record validation")
	}
}

// State returns the stability gate state.
func (a *App) State() lfpc.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.State()
}
