// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// mediaanalyzer tool's analyze subcommand implementation.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/evolution-gaming/mediaanalyzer/internal/logging"
	"github.com/evolution-gaming/mediaanalyzer/internal/media"
)

// CreateAnalyzeCommand will create Commander instance from AnalyzeApp.
func CreateAnalyzeCommand() *AnalyzeApp {
	longHelp := `Subcommand "analyze" probes a single media file and prints its normalized metadata
as JSON. Flag -i is mandatory.

Exit code is 1 when the file can not be analyzed, in which case the reason is printed
to stderr.

Examples:

  mediaanalyzer analyze -i video.mp4
  mediaanalyzer analyze -i audio.m4a -streams=false -timeout 5s`
	app := &AnalyzeApp{
		fs:  flag.NewFlagSet("analyze", flag.ContinueOnError),
		gf:  globalFlags{},
		out: os.Stdout,
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flInFile, "i", "", "Media file to analyze")
	app.fs.BoolVar(&app.flStreams, "streams", true, "Include per-stream details")
	app.fs.DurationVar(&app.flTimeout, "timeout", 0, "Probe timeout, overrides configuration when positive")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure AnalyzeApp implements Commander interface.
var _ Commander = (*AnalyzeApp)(nil)

// AnalyzeApp is analyze subcommand context that implements Commander interface.
type AnalyzeApp struct {
	// Output for analysis result
	out io.Writer
	// FlagSet instance
	fs *flag.FlagSet
	// Global flags
	gf globalFlags
	// Input file flag
	flInFile string
	// Include streams flag
	flStreams bool
	// Probe timeout flag
	flTimeout time.Duration
}

func (a *AnalyzeApp) Name() string {
	return a.fs.Name()
}

func (a *AnalyzeApp) Help() {
	a.fs.Usage()
}

// Run is main entry point into AnalyzeApp execution.
func (a *AnalyzeApp) Run(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.Name()),
		}
	}

	if a.gf.Debug {
		logging.EnableDebugLogger()
	}

	if a.flInFile == "" {
		a.Help()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -i is missing",
		}
	}

	cfg, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	if err = cfg.Verify(); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
	}

	prober, err := cfg.NewProber()
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	timeout := cfg.Timeout()
	if a.flTimeout > 0 {
		timeout = a.flTimeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Debugf("Analyzing %s (timeout %s)", a.flInFile, timeout)
	mf, err := media.NewAnalyzer(prober, timeout).Analyze(ctx, a.flInFile, a.flStreams)
	if err != nil {
		var aErr *media.AnalysisError
		if errors.As(err, &aErr) {
			logging.Debugf("Analysis failed: kind=%s stream=%d field=%q", aErr.Kind, aErr.StreamIndex, aErr.Field)
		}
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mf); err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	return nil
}
