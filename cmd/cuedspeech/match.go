package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/lfpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// runMatch scores one landmark frame read from a file, or stdin, and prints
// the match result as JSON.
func runMatch(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	key := fs.String("key", "", "required consonant key, e.g. J")
	zone := fs.Int("zone", 0, "required position 1-5, 0 for none")
	text := fs.String("text", "", "syllable text shown in feedback")
	policy := fs.String("policy", "", "configuration group policy: group or strict")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *zone != 0 && !lfpc.Zone(*zone).Valid() {
		return fmt.Errorf("zone must be within 1..5, got %d", *zone)
	}

	engine, err := config.LoadEngineOrDefault(cfg.TuningPath)
	if err != nil {
		return err
	}
	if *policy != "" {
		p, err := lfpc.ParseGroupPolicy(*policy)
		if err != nil {
			return err
		}
		engine.GroupPolicy = p
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read frame: %w", err)
	}

	target := lfpc.NewTarget(*text, *key, lfpc.Zone(*zone))
	result := engine.Matcher().MatchFrame(raw, target)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
