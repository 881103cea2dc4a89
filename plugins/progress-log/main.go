// Package main is a hook that appends engine events to a JSON lines file.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is the event written to stdin by the hook executor.
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

// Response is written to stdout.
type Response struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Data    jsoniter.RawMessage `json:"data,omitempty"`
}

// Config selects the output file.
type Config struct {
	File string `json:"file"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	path, err := outputPath(req.Config)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	n, err := appendLine(path, req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	data, _ := json.Marshal(map[string]any{"file": path, "bytes": n})
	writeResponse(Response{Success: true, Data: data})
}

func outputPath(raw jsoniter.RawMessage) (string, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.File != "" {
		return cfg.File, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cuedspeech", "progress.jsonl"), nil
}

func appendLine(path string, req Request) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	req.Config = nil
	line, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to encode event: %w", err)
	}
	return f.Write(append(line, '\n'))
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
