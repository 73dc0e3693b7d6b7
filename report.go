// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// mediaanalyzer tool's report subcommand implementation.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"

	"github.com/evolution-gaming/mediaanalyzer/internal/analysis"
	"github.com/evolution-gaming/mediaanalyzer/internal/catalog"
	"github.com/evolution-gaming/mediaanalyzer/internal/logging"
	"github.com/evolution-gaming/mediaanalyzer/internal/media"
	"golang.org/x/sync/errgroup"
)

const bitratePlotFile = "bitrate.png"

// CreateReportCommand will create instance of ReportApp.
func CreateReportCommand() *ReportApp {
	longHelp := `Subcommand "report" will analyze given media files, directories are walked
recursively, and write JSON and CSV reports together with an overall bitrate
distribution plot into output directory. Flag -out-dir is mandatory.

Files that fail analysis are included in reports with error kind and reason.

Examples:

  mediaanalyzer report -out-dir out -i a.mp4 -i b.mkv
  mediaanalyzer report -out-dir out -workers 4 path/to/media/dir`

	app := &ReportApp{
		fs:    flag.NewFlagSet("report", flag.ContinueOnError),
		gf:    globalFlags{},
		store: catalog.NewStore(),
		out:   os.Stdout,
	}
	app.gf.Register(app.fs)
	app.fs.Var(&app.flInputs, "i", "Input media file or directory (repeatable)")
	app.fs.StringVar(&app.flOutDir, "out-dir", "", "Output directory to store results")
	app.fs.IntVar(&app.flWorkers, "workers", 0, "Number of concurrent probes, overrides configuration when positive")
	app.fs.BoolVar(&app.flStreams, "streams", true, "Analyze per-stream details")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure ReportApp implements Commander interface.
var _ Commander = (*ReportApp)(nil)

// ReportApp is subcommand application context that implements Commander interface.
type ReportApp struct {
	// Configuration object
	cfg *Config
	// Output for statistics table
	out io.Writer
	// FlagSet instance
	fs *flag.FlagSet
	// Global flags
	gf globalFlags
	// Input files and directories flag, positional arguments are appended
	flInputs inputFiles
	// Output directory for reports
	flOutDir string
	// Concurrency flag
	flWorkers int
	// Include streams flag
	flStreams bool
	// Analysis outcome store
	store *catalog.Store
}

func (a *ReportApp) Name() string {
	return a.fs.Name()
}

// init will do ReportApp state initialization.
func (a *ReportApp) init(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      fmt.Sprintf("%s usage error", a.fs.Name()),
		}
	}

	if a.gf.Debug {
		logging.EnableDebugLogger()
	}

	a.flInputs = append(a.flInputs, a.fs.Args()...)
	if len(a.flInputs) == 0 {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      "no input files given",
		}
	}

	// Output dir is mandatory.
	if a.flOutDir == "" {
		a.fs.Usage()
		return &AppError{
			exitCode: 2,
			msg:      "mandatory option -out-dir is missing",
		}
	}

	// Do not write over existing output directory.
	if isNonEmptyDir(a.flOutDir) {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("non-empty out dir: %s", a.flOutDir)}
	}

	// Load application configuration.
	c, err := LoadConfig(a.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	a.cfg = &c

	return nil
}

// analyze runs analyzer over files concurrently and stores every outcome, failures
// included.
func (a *ReportApp) analyze(ctx context.Context, analyzer *media.Analyzer, files []string, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, f := range files {
		g.Go(func() error {
			// Do not start new probes once cancelled.
			if err := ctx.Err(); err != nil {
				return err
			}
			mf, err := analyzer.Analyze(ctx, f, a.flStreams)
			id := a.store.Insert(catalog.NewRecord(f, mf, err))
			if err != nil {
				logging.Infof("Failed analyzing %s: %s", f, err)
			} else {
				logging.Debugf("Storing record (id=%v) for %s", id, f)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}
	return nil
}

// saveReports writes stored records as JSON and CSV reports.
func (a *ReportApp) saveReports(records []catalog.Record) error {
	jsonPath := path.Join(a.flOutDir, a.cfg.ReportFileName.Value())
	csvPath := strings.TrimSuffix(jsonPath, filepath.Ext(jsonPath)) + ".csv"

	writers := []struct {
		path  string
		write func(io.Writer, []catalog.Record) error
	}{
		{jsonPath, catalog.WriteJSON},
		{csvPath, catalog.WriteCSV},
	}
	for _, w := range writers {
		fd, err := os.Create(w.path)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		err = w.write(fd, records)
		// Close file descriptor before checking error, avoid defer in loop.
		if cErr := fd.Close(); err == nil {
			err = cErr
		}
		if err != nil {
			return err
		}
		logging.Infof("Report written: %s", w.path)
	}

	return nil
}

// summarize prints descriptive statistics of successfully analyzed files and plots
// overall bitrate distribution.
func (a *ReportApp) summarize(records []catalog.Record) error {
	var durations, bitrates []float64
	for _, r := range records {
		if r.Failed() {
			continue
		}
		durations = append(durations, r.Duration)
		if r.OverallBitrate > 0 {
			// Plot and tabulate in kbit/s, raw bit/s values are hard to read.
			bitrates = append(bitrates, float64(r.OverallBitrate)/1000)
		}
	}

	var names []string
	var stats []analysis.Stats
	for _, m := range []struct {
		name   string
		values []float64
	}{
		{"duration_s", durations},
		{"bitrate_kbps", bitrates},
	} {
		s, err := analysis.Describe(m.values)
		if err != nil {
			logging.Debugf("Skip %s statistics: %s", m.name, err)
			continue
		}
		names = append(names, m.name)
		stats = append(stats, s)
	}
	if len(stats) > 0 {
		if err := analysis.WriteStatsTable(a.out, names, stats); err != nil {
			return fmt.Errorf("writing statistics: %w", err)
		}
	}

	// A distribution of a single value is not worth plotting.
	if len(bitrates) < 2 {
		logging.Info("Skip bitrate plot, not enough files with known bitrate")
		return nil
	}
	plotPath := path.Join(a.flOutDir, bitratePlotFile)
	if err := analysis.MultiPlotDistribution(bitrates, "Bitrate [kbit/s]", "Overall bitrate", plotPath); err != nil {
		return fmt.Errorf("creating bitrate plot: %w", err)
	}
	logging.Infof("Bitrate plot done: %s", plotPath)

	return nil
}

// Run is main entry point into ReportApp execution.
func (a *ReportApp) Run(args []string) error {
	logging.Infof("mediaanalyzer version: %s", vInfo)
	if err := a.init(args); err != nil {
		return err
	}

	logging.Debugf("Application configuration: %#v", a.cfg)
	// Check if configuration is valid.
	if err := a.cfg.Verify(); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
	}

	files, err := collectMediaFiles(a.flInputs)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	if len(files) == 0 {
		return &AppError{exitCode: 1, msg: "no media files found"}
	}

	prober, err := a.cfg.NewProber()
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	workers := a.cfg.Workers.Value()
	if a.flWorkers > 0 {
		workers = a.flWorkers
	}

	if err = os.MkdirAll(a.flOutDir, os.FileMode(0o755)); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("creating directory: %s", err)}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Infof("Analyzing %d files with %d workers", len(files), workers)
	analyzer := media.NewAnalyzer(prober, a.cfg.Timeout())
	if err = a.analyze(ctx, analyzer, files, workers); err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	records := a.store.Records()
	if err = a.saveReports(records); err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}
	if err = a.summarize(records); err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	var failed int
	for _, r := range records {
		if r.Failed() {
			failed++
		}
	}
	switch {
	case failed == a.store.Len():
		return &AppError{exitCode: 1, msg: fmt.Sprintf("all %d files failed analysis", failed)}
	case failed > 0:
		logging.Infof("%d of %d files failed analysis, see report for reasons", failed, a.store.Len())
	}

	return nil
}
