package main

import (
	"flag"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

type seedSyllable struct {
	text     string
	consonne string
	voyelle  string
	key      string
	zone     lfpc.Zone
	level    string
}

// defaultSyllables covers every configuration group once with a position,
// plus the bare hand shapes for beginners.
var defaultSyllables = []seedSyllable{
	{"pa", "p", "a", "P", lfpc.ZoneSide, store.LevelStandard},
	{"ki", "k", "i", "K", lfpc.ZoneMouth, store.LevelStandard},
	{"so", "s", "o", "S", lfpc.ZoneSide, store.LevelStandard},
	{"bu", "b", "u", "B", lfpc.ZoneChin, store.LevelStandard},
	{"mé", "m", "é", "M", lfpc.ZoneNeck, store.LevelStandard},
	{"la", "l", "a", "L", lfpc.ZoneSide, store.LevelStandard},
	{"gu", "g", "u", "G", lfpc.ZoneChin, store.LevelStandard},
	{"yeu", "y", "eu", "Y", lfpc.ZoneNeck, store.LevelStandard},
	{"ti", "t", "i", "T", lfpc.ZoneMouth, store.LevelStandard},
	{"da", "d", "a", "D", lfpc.ZoneSide, store.LevelStandard},
	{"un", "", "un", "M", lfpc.ZoneEye, store.LevelStandard},
	{"J", "j", "", "J", 0, store.LevelBeginner},
	{"K", "k", "", "K", 0, store.LevelBeginner},
	{"L", "l", "", "L", 0, store.LevelBeginner},
	{"B", "b", "", "B", 0, store.LevelBeginner},
	{"M", "m", "", "M", 0, store.LevelBeginner},
	{"G", "g", "", "G", 0, store.LevelBeginner},
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// seedSyllables inserts the default syllables that are not stored yet.
func seedSyllables(st *store.Store) (int, error) {
	added := 0
	for _, d := range defaultSyllables {
		if _, err := st.Syllables().GetByText(d.text); err == nil {
			continue
		}
		s := &store.Syllable{
			Text:        d.text,
			Consonne:    optional(d.consonne),
			Voyelle:     optional(d.voyelle),
			HandSignKey: optional(d.key),
			Level:       d.level,
		}
		if d.zone != 0 {
			z := int(d.zone)
			s.HandPositionConfig = &z
		}
		if err := st.Syllables().Create(s); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func runSeed(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database path")
	fs.Parse(args)

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	added, err := seedSyllables(st)
	if err != nil {
		return err
	}
	logging.Info(logging.Fields{"added": added, "db": cfg.DBPath}, "seed complete")
	return nil
}

func runInitConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	fs.StringVar(&cfg.TuningPath, "out", cfg.TuningPath, "tuning file to write")
	force := fs.Bool("force", false, "overwrite an existing file")
	fs.Parse(args)

	if !*force {
		if _, err := config.LoadEngine(cfg.TuningPath); err == nil {
			logging.Info(logging.Fields{"path": cfg.TuningPath}, "tuning file exists, use -force to overwrite")
			return nil
		}
	}
	if err := config.DefaultEngine().SaveToFile(cfg.TuningPath); err != nil {
		return err
	}
	logging.Info(logging.Fields{"path": cfg.TuningPath}, "wrote default tuning file")
	return nil
}
