// Package main is auralctl, a headless demo CLI for the acoustic probe
// core: it loads a JSON scene fixture, runs one or more ticks against a
// listener position, submits a probe per configured source, and prints
// each source's direct-path gain, bandpass filter, and reverb
// parameters. Optionally plays an audible preview of the result and/or
// fires a desktop notification when a tick completes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resonantfield/auralcore/internal/announce"
	"github.com/resonantfield/auralcore/internal/audition"
	"github.com/resonantfield/auralcore/internal/config"
	"github.com/resonantfield/auralcore/internal/engine"
	"github.com/resonantfield/auralcore/internal/geom"
	"github.com/resonantfield/auralcore/internal/probe"
	"github.com/resonantfield/auralcore/internal/sceneio"
)

// Version is set at build time via ldflags.
var Version = "dev"

// cliConfig holds auralctl's command-line flags.
type cliConfig struct {
	ScenePath string
	ConfigDir string
	Ticks     int
	Interval  time.Duration
	Preview   bool
	Announce  bool
	Verbose   bool
}

func main() {
	cfg := parseFlags()

	if cfg.Verbose {
		log.Printf("auralctl version %s starting...", Version)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func parseFlags() *cliConfig {
	cfg := &cliConfig{}

	flag.StringVar(&cfg.ScenePath, "scene", "", "path to a JSON scene fixture (required)")
	flag.StringVar(&cfg.ConfigDir, "config", "", "configuration directory (default: ~/.config/auralctl)")
	flag.IntVar(&cfg.Ticks, "ticks", 1, "number of probe ticks to run")
	flag.DurationVar(&cfg.Interval, "interval", 0, "pause between ticks (0 runs back-to-back)")
	flag.BoolVar(&cfg.Preview, "preview", false, "play an audible preview of each tick's reverb")
	flag.BoolVar(&cfg.Announce, "announce", false, "fire a desktop notification per tick (Linux only)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()

	if cfg.ScenePath == "" {
		fmt.Fprintln(os.Stderr, "auralctl: -scene is required")
		flag.Usage()
		os.Exit(2)
	}

	if cfg.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("failed to get home directory: %v", err)
		}
		cfg.ConfigDir = homeDir + "/.config/auralctl"
	}

	return cfg
}

func run(ctx context.Context, cli *cliConfig) error {
	configMgr := config.NewManager(cli.ConfigDir)
	if err := configMgr.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	scene, err := sceneio.Load(cli.ScenePath)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	var preview *audition.Preview
	if cli.Preview {
		preview, err = audition.NewPreview()
		if err != nil {
			log.Printf("[AUDITION] warning: failed to initialize preview playback: %v", err)
			log.Printf("[AUDITION] continuing without audible preview")
		} else {
			defer preview.Close()
		}
	}

	var notifier announce.Announcer = announce.New()
	if cli.Announce {
		dbusAnnouncer, err := announce.NewDBus()
		if err != nil {
			log.Printf("[ANNOUNCE] warning: failed to connect to desktop bus: %v", err)
			log.Printf("[ANNOUNCE] continuing without notifications")
		} else {
			notifier = dbusAnnouncer
		}
	}
	defer notifier.Close()

	e := engine.New(configMgr.Get())
	e.SetScene(scene.Components, 0)

	for tick := 0; tick < cli.Ticks; tick++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		e.PerTickBegin(scene.Listener, geom.Identity(), configMgr.Get().Probe.Range)

		handle, err := e.SubmitProbe("demo-source", scene.Source, probe.Config{})
		if err != nil {
			return fmt.Errorf("failed to submit probe: %w", err)
		}

		if err := e.JoinAll(); err != nil {
			return fmt.Errorf("probe tick failed: %w", err)
		}

		result, ok := e.Result(handle)
		if !ok {
			return fmt.Errorf("probe result missing for tick %d", tick)
		}

		printResult(tick, result)

		if preview != nil {
			preview.Play(result.Reverb)
		}

		if err := notifier.Notify("auralctl", fmt.Sprintf("tick %d: gain=%.3f t60=%.2fs", tick, result.BandpassGain, result.Reverb.DecayTime)); err != nil {
			log.Printf("[ANNOUNCE] warning: notification failed: %v", err)
		}

		if cli.Interval > 0 && tick < cli.Ticks-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cli.Interval):
			}
		}
	}

	return nil
}

func printResult(tick int, r engine.Result) {
	mode := "trace"
	if r.Estimate {
		mode = "estimate"
	}
	fmt.Printf("tick %d [%s]%s\n", tick, mode, degradedSuffix(r.Degraded))
	fmt.Printf("  direct gain (low/mid/high): %.4f / %.4f / %.4f\n", r.Gain[0], r.Gain[1], r.Gain[2])
	fmt.Printf("  bandpass gain=%.4f low=%.4f high=%.4f\n", r.BandpassGain, r.BandpassLowRatio, r.BandpassHighRatio)
	fmt.Printf("  reverb: decayTime=%.3fs reflectionsGain=%.3f lateReverbGain=%.3f echoTime=%.3fs\n",
		r.Reverb.DecayTime, r.Reverb.ReflectionsGain, r.Reverb.LateReverbGain, r.Reverb.EchoTime)
}

func degradedSuffix(degraded bool) string {
	if degraded {
		return " (degraded: some rays cancelled)"
	}
	return ""
}
