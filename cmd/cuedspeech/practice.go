package main

import (
	"flag"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ayusman/cuedspeech/internal/app"
	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/tray"
)

func runPractice(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("practice", flag.ExitOnError)
	fs.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device ID")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "stability profile")
	fs.String("policy", "", "configuration group policy: group or strict")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address of the practice page")
	level := fs.String("level", "", "practice only this syllable level")
	advance := fs.Bool("advance", true, "move to the next syllable after a validation")
	fs.Parse(args)

	svc, err := openServices(cfg, explicitSettings(fs))
	if err != nil {
		return err
	}
	defer svc.store.Close()

	a, err := app.New(app.Config{
		Store:       svc.store,
		Engine:      svc.engine,
		Profile:     svc.profile,
		Level:       *level,
		CameraID:    cfg.CameraID,
		References:  svc.references,
		Dispatcher:  svc.dispatcher,
		AutoAdvance: *advance,
	})
	if err != nil {
		return err
	}
	if err := a.LoadSyllables(); err != nil {
		return err
	}

	t := tray.New()
	window := a.Profile().Window
	a.OnEvent(func(ev app.Event) {
		if ev.Target != nil {
			t.SetTarget(ev.Target.Text)
		} else {
			t.SetTarget("")
		}
		t.SetProgress(ev.Progress, window)
		if ev.Type == app.EventValidated && ev.Validation != nil {
			t.SetLastResult(ev.Validation.SyllableText, ev.Validation.Confidence)
		}
	})

	t.OnToggle(a.SetEnabled)
	t.OnSkip(func() {
		if _, err := a.Skip(); err != nil {
			logging.Warn(logging.Fields{"error": err.Error()}, "cannot skip")
		}
	})
	t.OnRetry(a.Retry)
	t.OnSettings(func() { openBrowser(pageURL(cfg.Addr)) })
	t.OnQuit(a.Stop)

	go func() {
		if err := svc.newServer(findWebDir()).ListenAndServe(cfg.Addr); err != nil {
			logging.Error(logging.Fields{"error": err.Error()}, "http server stopped")
		}
	}()

	if _, err := a.NextTarget(); err != nil {
		logging.Warn(logging.Fields{"error": err.Error()}, "nothing to practice yet")
	}
	a.SetEnabled(t.IsEnabled())
	if err := a.Start(); err != nil {
		return err
	}

	t.Run()
	return nil
}

func pageURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logging.Warn(logging.Fields{"url": url, "error": err.Error()}, "failed to open browser")
	}
}
