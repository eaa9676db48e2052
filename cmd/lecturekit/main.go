// Command lecturekit transcribes a lecture recording and optionally
// generates localized Markdown study notes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/lecturekit/lecturekit/config"
	"github.com/lecturekit/lecturekit/errors"
	"github.com/lecturekit/lecturekit/logger"
	"github.com/lecturekit/lecturekit/pipeline"
	"github.com/lecturekit/lecturekit/store"
	"github.com/lecturekit/lecturekit/telemetry"
	"github.com/lecturekit/lecturekit/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inPath      string
		outPath     string
		summaryPath string
		configFile  string
		envFile     string
		lang        string
		mode        string
		doSummary   bool
		timed       bool
		keepPartial bool
		showVersion bool
	)

	flag.StringVar(&inPath, "input", "", "Input audio/video file path (-i)")
	flag.StringVar(&inPath, "i", "", "Input audio/video file path")
	flag.StringVar(&outPath, "output", "", "Output transcript file (-o, default <input>.txt)")
	flag.StringVar(&outPath, "o", "", "Output transcript file")
	flag.StringVar(&summaryPath, "summary-output", "", "Output study notes file (default <input>.notes.md)")
	flag.StringVar(&configFile, "config", "", "Config file path (default ./config.yml)")
	flag.StringVar(&envFile, "env-file", "", "Env file path (default ./.env)")
	flag.StringVar(&lang, "lang", "", "Summary language: it|en (overrides config)")
	flag.StringVar(&mode, "mode", "", "Assembly mode: strict|degraded (overrides config)")
	flag.BoolVar(&doSummary, "summary", false, "Generate localized study notes after transcription")
	flag.BoolVar(&timed, "timed", false, "Write the transcript with per-segment clock ranges")
	flag.BoolVar(&keepPartial, "keep-partial", false, "Write a degraded transcript even when the run fails")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("lecturekit " + version.Get().String())
		return 0
	}
	if inPath == "" {
		fmt.Fprintln(os.Stderr, "missing --input/-i file path")
		flag.Usage()
		return 2
	}
	if outPath == "" {
		base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
		outPath = base + ".txt"
	}
	if summaryPath == "" {
		summaryPath = strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".notes.md"
	}

	cfg, err := config.Load(config.LoaderOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	if lang != "" {
		cfg.UILanguage = lang
	}
	if mode != "" {
		cfg.AssemblyMode = mode
	}
	if keepPartial {
		cfg.KeepPartial = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRate:  cfg.Telemetry.SampleRate,
	}, log)
	if err != nil {
		log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
	}
	if tp != nil {
		defer tp.Shutdown(context.Background())
	}

	opts := []pipeline.Option{
		pipeline.WithObserver(progressPrinter()),
	}
	if cfg.Checkpoint.Enabled {
		st, err := store.Open(ctx, cfg.Checkpoint.Path, log)
		if err != nil {
			log.Warn("checkpointing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer st.Close()
			opts = append(opts, pipeline.WithStore(st))
		}
	}

	p, err := pipeline.New(*cfg, log, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		return 2
	}

	outcome, runErr := p.Run(ctx, pipeline.Request{Source: inPath, Summarize: doSummary})
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", runErr)
		if outcome == nil {
			if errors.CodeOf(runErr) == errors.ErrCodeCanceled {
				return 130
			}
			return 1
		}
		fmt.Fprintln(os.Stderr, "writing partial transcript")
	}

	rendered := outcome.Transcript
	if timed {
		rendered = outcome.RenderTimed()
	}
	if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing transcript: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "transcript written to %s (%d segments", outPath, outcome.Segments)
	if len(outcome.Missing) > 0 {
		fmt.Fprintf(os.Stderr, ", %d missing", len(outcome.Missing))
	}
	fmt.Fprintln(os.Stderr, ")")

	if outcome.Summary != nil {
		if err := os.WriteFile(summaryPath, []byte(outcome.Summary.Content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "writing study notes: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "study notes written to %s\n", summaryPath)
	}

	if runErr != nil {
		return 1
	}
	return 0
}

// progressPrinter renders stage progress on stderr, one line per update.
func progressPrinter() pipeline.Observer {
	return func(e pipeline.Event) {
		if e.Stage == pipeline.StageTranscribe && e.Total > 0 {
			fmt.Fprintf(os.Stderr, "\r[%s] %d/%d", e.Stage, e.Completed, e.Total)
			if e.Completed == e.Total {
				fmt.Fprintln(os.Stderr)
			}
			return
		}
		if e.Completed == e.Total {
			fmt.Fprintf(os.Stderr, "[%s] done\n", e.Stage)
		}
	}
}
