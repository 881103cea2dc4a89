// Package config loads process settings from the environment and the engine
// tuning file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvAddr     = "CUEDSPEECH_ADDR"
	EnvDB       = "CUEDSPEECH_DB"
	EnvHookDir  = "CUEDSPEECH_HOOK_DIR"
	EnvTuning   = "CUEDSPEECH_TUNING"
	EnvProfile  = "CUEDSPEECH_PROFILE"
	EnvCamera   = "CUEDSPEECH_CAMERA"
	EnvLogLevel = "LOG_LEVEL"
	EnvLogFile  = "LOG_FILE"
)

// Config holds process-level settings.
type Config struct {
	Addr       string
	DBPath     string
	HookDir    string
	TuningPath string
	Profile    string
	CameraID   int
	LogLevel   string
	LogFile    string
}

// DataDir returns ~/.cuedspeech, or a relative directory when the home
// directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cuedspeech"
	}
	return filepath.Join(home, ".cuedspeech")
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	dir := DataDir()
	return &Config{
		Addr:       ":8080",
		DBPath:     filepath.Join(dir, "cuedspeech.db"),
		HookDir:    filepath.Join(dir, "hooks"),
		TuningPath: filepath.Join(dir, "engine.json"),
		Profile:    "strict",
		CameraID:   0,
		LogLevel:   "info",
	}
}

// LoadEnv reads the given .env files into the process environment. Missing
// files are skipped; a malformed file is an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv overlays environment values on the defaults.
func FromEnv() (*Config, error) {
	cfg := Default()

	setString(&cfg.Addr, EnvAddr)
	setString(&cfg.DBPath, EnvDB)
	setString(&cfg.HookDir, EnvHookDir)
	setString(&cfg.TuningPath, EnvTuning)
	setString(&cfg.Profile, EnvProfile)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.LogFile, EnvLogFile)

	if v := os.Getenv(EnvCamera); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", EnvCamera, err)
		}
		cfg.CameraID = id
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
