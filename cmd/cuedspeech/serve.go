package main

import (
	"flag"
	"time"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/gesture"
	"github.com/ayusman/cuedspeech/internal/hook"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/server"
	"github.com/ayusman/cuedspeech/internal/store"
)

const hookTimeout = 5 * time.Second

func lfpcPolicy(s string) lfpc.GroupPolicy {
	p, err := lfpc.ParseGroupPolicy(s)
	if err != nil {
		logging.Warn(logging.Fields{"policy": s}, "unknown group policy, using group credit")
		return lfpc.PolicyGroupCredit
	}
	return p
}

// services are shared by serve and practice.
type services struct {
	store      *store.Store
	engine     *config.Engine
	profile    string
	references *gesture.ReferenceMatcher
	hooks      *hook.Manager
	dispatcher *hook.Dispatcher
}

// openServices opens the store and builds everything around it. Settings in
// persist are written before the engine is loaded, so flags given on the
// command line stick for later runs.
func openServices(cfg *config.Config, persist map[string]string) (*services, error) {
	st, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	for k, v := range persist {
		if err := st.Settings().Set(k, v); err != nil {
			st.Close()
			return nil, err
		}
	}

	engine, profile, err := loadEngine(cfg, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	if n, err := st.Syllables().Count(); err == nil && n == 0 {
		added, err := seedSyllables(st)
		if err != nil {
			st.Close()
			return nil, err
		}
		logging.Info(logging.Fields{"count": added}, "seeded default syllables")
	}

	refs := gesture.NewReferenceMatcher()
	stored, err := st.References().List()
	if err != nil {
		st.Close()
		return nil, err
	}
	for _, r := range stored {
		refs.SetReference(&gesture.Reference{Key: r.Key, Landmarks: r.Landmarks, Tolerance: r.Tolerance, Samples: r.Samples})
	}

	manager := hook.NewManager(cfg.HookDir)
	if err := manager.Discover(); err != nil {
		logging.Warn(logging.Fields{"dir": cfg.HookDir, "error": err.Error()}, "failed to discover hooks")
	}
	logging.Info(logging.Fields{"dir": cfg.HookDir, "count": len(manager.List())}, "hooks discovered")

	return &services{
		store:      st,
		engine:     engine,
		profile:    profile,
		references: refs,
		hooks:      manager,
		dispatcher: hook.NewDispatcher(manager, hook.NewExecutor(hookTimeout), st.HookBindings()),
	}, nil
}

func (s *services) newServer(webDir string) *server.Server {
	return server.New(server.Config{
		StaticDir:  webDir,
		Store:      s.store,
		Engine:     s.engine,
		Profile:    s.profile,
		References: s.references,
		Hooks:      s.hooks,
		Dispatcher: s.dispatcher,
	})
}

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database path")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "default stability profile")
	fs.String("policy", "", "configuration group policy: group or strict")
	webDir := fs.String("web", findWebDir(), "static files directory")
	fs.Parse(args)

	svc, err := openServices(cfg, explicitSettings(fs))
	if err != nil {
		return err
	}
	defer svc.store.Close()

	if *webDir != "" {
		logging.Info(logging.Fields{"dir": *webDir}, "serving static files")
	}
	return svc.newServer(*webDir).ListenAndServe(cfg.Addr)
}

// explicitSettings returns the persisted settings given as flags.
func explicitSettings(fs *flag.FlagSet) map[string]string {
	out := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "profile":
			out[store.SettingProfile] = f.Value.String()
		case "policy":
			out[store.SettingGroupPolicy] = f.Value.String()
		}
	})
	return out
}
