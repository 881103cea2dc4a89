// Package hook runs external executables when the practice engine emits an
// event, such as a validated syllable.
package hook

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Events a hook can subscribe to.
const (
	EventValidated = "validated"
	EventSkipped   = "skipped"
)

// Manifest describes a hook's metadata and subscriptions. It is read from
// hook.json in the hook's directory.
type Manifest struct {
	Name         string              `json:"name"`
	Version      string              `json:"version"`
	Description  string              `json:"description"`
	Executable   string              `json:"executable"`
	Events       []string            `json:"events"`
	ConfigSchema jsoniter.RawMessage `json:"configSchema,omitempty"`
}

// Subscribes reports whether the manifest lists event.
func (m Manifest) Subscribes(event string) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is written to the hook's stdin as JSON.
type Request struct {
	Event      string              `json:"event"`
	Syllable   string              `json:"syllable"`
	SyllableID string              `json:"syllable_id,omitempty"`
	Confidence int                 `json:"confidence"`
	Profile    string              `json:"profile"`
	Frames     int                 `json:"frames,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
	Config     jsoniter.RawMessage `json:"config,omitempty"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
