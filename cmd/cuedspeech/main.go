// Command cuedspeech is the cued speech (LfPC) practice engine.
//
// Usage:
//
//	cuedspeech serve     [-addr :8080] [-web dir]   HTTP API and practice websocket
//	cuedspeech practice  [-camera 0] [-level beginner]   webcam practice with a tray menu
//	cuedspeech match     -key J -zone 3 [frame.json]   score one landmark frame
//	cuedspeech seed      insert the default syllables
//	cuedspeech init-config   write the default engine tuning file
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "serve":
		err = runServe(cfg, args)
	case "practice":
		err = runPractice(cfg, args)
	case "match":
		err = runMatch(cfg, args, os.Stdin, os.Stdout)
	case "seed":
		err = runSeed(cfg, args)
	case "init-config":
		err = runInitConfig(cfg, args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logging.Fatal(logging.Fields{"command": cmd, "error": err.Error()}, "command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cuedspeech <command> [flags]

commands:
  serve        run the HTTP API and the practice websocket
  practice     practice with the webcam from the system tray
  match        score one landmark frame against a target
  seed         insert the default syllables
  init-config  write the default engine tuning file`)
}

// openStore opens the database, creating its directory.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.New(path)
}

// loadEngine reads the tuning file and applies the persisted settings.
func loadEngine(cfg *config.Config, st *store.Store) (*config.Engine, string, error) {
	engine, err := config.LoadEngineOrDefault(cfg.TuningPath)
	if err != nil {
		return nil, "", err
	}

	profile := cfg.Profile
	if st != nil {
		if profile, err = st.Settings().GetOr(store.SettingProfile, cfg.Profile); err != nil {
			return nil, "", err
		}
		policy, err := st.Settings().GetOr(store.SettingGroupPolicy, string(engine.GroupPolicy))
		if err != nil {
			return nil, "", err
		}
		engine.GroupPolicy = lfpcPolicy(policy)
	}

	if err := engine.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid engine config %s: %w", cfg.TuningPath, err)
	}
	if _, err := engine.Profile(profile); err != nil {
		return nil, "", err
	}
	return engine, profile, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(config.DataDir(), "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
