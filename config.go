// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Application configuration structures.

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/evolution-gaming/mediaanalyzer/internal/logging"
	"github.com/evolution-gaming/mediaanalyzer/internal/probe"
	"github.com/evolution-gaming/mediaanalyzer/internal/tools"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	defaultReportFile   = "report.json"
	defaultProbeTimeout = "30s"
)

// Config represent application configuration.
type Config struct {
	FfprobePath ConfigVal[string] `json:"ffprobe_path,omitempty" yaml:"ffprobe_path,omitempty"`
	FfprobeArgs ConfigVal[string] `json:"ffprobe_args,omitempty" yaml:"ffprobe_args,omitempty"`
	// Empty mediainfo path disables mediainfo.
	MediainfoPath  ConfigVal[string] `json:"mediainfo_path,omitempty" yaml:"mediainfo_path,omitempty"`
	MediainfoArgs  ConfigVal[string] `json:"mediainfo_args,omitempty" yaml:"mediainfo_args,omitempty"`
	ProbeTimeout   ConfigVal[string] `json:"probe_timeout,omitempty" yaml:"probe_timeout,omitempty"`
	Workers        ConfigVal[int]    `json:"workers,omitempty" yaml:"workers,omitempty"`
	ReportFileName ConfigVal[string] `json:"report_file_name,omitempty" yaml:"report_file_name,omitempty"`
}

// Verify will check that configuration is valid.
//
// Will check that configuration option values are sensible.
func (c *Config) Verify() error {
	msgs := []string{}
	// Check that ffprobe exists.
	if !fileExists(c.FfprobePath.Value()) {
		msgs = append(msgs, "invalid ffprobe path")
	}
	if _, err := shlex.Split(c.FfprobeArgs.Value()); err != nil || c.FfprobeArgs.IsNil() {
		msgs = append(msgs, "invalid ffprobe args")
	}
	// Mediainfo is optional, but if set it should exist.
	if p := c.MediainfoPath.Value(); p != "" {
		if !fileExists(p) {
			msgs = append(msgs, "invalid mediainfo path")
		}
		if _, err := shlex.Split(c.MediainfoArgs.Value()); err != nil || c.MediainfoArgs.IsNil() {
			msgs = append(msgs, "invalid mediainfo args")
		}
	}
	if d, err := time.ParseDuration(c.ProbeTimeout.Value()); err != nil || d < 0 {
		msgs = append(msgs, "invalid probe timeout")
	}
	if c.Workers.Value() < 1 {
		msgs = append(msgs, "workers should be positive")
	}
	// Report file should not be empty.
	if c.ReportFileName.Value() == "" {
		msgs = append(msgs, "empty report file name")
	}

	if len(msgs) != 0 {
		return fmt.Errorf("%s: %w", strings.Join(msgs, ", "), ErrInvalidConfig)
	}
	return nil
}

// Timeout returns parsed probe timeout. Zero means no timeout.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.ProbeTimeout.Value())
	return d
}

// NewProber creates Prober according to configuration: ffprobe alone or ffprobe merged
// with mediainfo.
func (c *Config) NewProber() (probe.Prober, error) {
	ff, err := probe.NewFfprobe(c.FfprobePath.Value(), c.FfprobeArgs.Value())
	if err != nil {
		return nil, err
	}
	if c.MediainfoPath.Value() == "" {
		return ff, nil
	}
	mi, err := probe.NewMediainfo(c.MediainfoPath.Value(), c.MediainfoArgs.Value())
	if err != nil {
		return nil, err
	}
	return &probe.Combined{Primary: ff, Secondary: mi}, nil
}

// OverrideFrom will overwrite fields from given Config object.
//
// Only fields that are "not-nil" (as per IsNil() method) in src Config object will be
// overwritten.
func (c *Config) OverrideFrom(src Config) {
	// TODO: some way to iterate over fields and set them (reflection?) otherwise need to
	// remember to update this method when new  fields are added.
	if !src.FfprobePath.IsNil() {
		c.FfprobePath = src.FfprobePath
	}
	if !src.FfprobeArgs.IsNil() {
		c.FfprobeArgs = src.FfprobeArgs
	}
	if !src.MediainfoPath.IsNil() {
		c.MediainfoPath = src.MediainfoPath
	}
	if !src.MediainfoArgs.IsNil() {
		c.MediainfoArgs = src.MediainfoArgs
	}
	if !src.ProbeTimeout.IsNil() {
		c.ProbeTimeout = src.ProbeTimeout
	}
	if !src.Workers.IsNil() {
		c.Workers = src.Workers
	}
	if !src.ReportFileName.IsNil() {
		c.ReportFileName = src.ReportFileName
	}
}

// loadDefaultConfig will create a default configuration.
//
// For some configuration options a default value will be specified, for others an
// auto-detection mechanism will populate option values.
func loadDefaultConfig() (Config, error) {
	var cfg Config

	// For default configuration attempt to locate ffprobe binary.
	ffprobe, err := tools.FfprobePath()
	if err != nil {
		return cfg, fmt.Errorf("DefaultConfig: %w", err)
	}

	// Mediainfo is an optional companion, run without it when not installed.
	mediainfo, err := tools.MediainfoPath()
	if err != nil {
		logging.Debugf("DefaultConfig: %s, continuing with ffprobe only", err)
		mediainfo = ""
	}

	cfg = Config{
		FfprobePath:    NewConfigVal(ffprobe),
		FfprobeArgs:    NewConfigVal(probe.DefaultFfprobeArgs),
		MediainfoPath:  NewConfigVal(mediainfo),
		MediainfoArgs:  NewConfigVal(probe.DefaultMediainfoArgs),
		ProbeTimeout:   NewConfigVal(defaultProbeTimeout),
		Workers:        NewConfigVal(runtime.NumCPU()),
		ReportFileName: NewConfigVal(defaultReportFile),
	}

	return cfg, nil
}

// loadConfigFromFile will load configuration from file.
//
// JSON and YAML formats are supported, format is chosen by file extension.
func loadConfigFromFile(f string) (cfg Config, err error) {
	fileExt := strings.ToLower(filepath.Ext(f))
	switch fileExt {
	case ".json":
		return loadJSON(f)
	case ".yaml", ".yml":
		return loadYAML(f)
	default:
		return cfg, fmt.Errorf("unknown config format: %s", fileExt)
	}
}

// LoadConfig will return merged default config and config from file. This is main
// function to use for config loading. Configuration file is optional e.g. can be "".
func LoadConfig(configFile string) (cfg Config, err error) {
	// Initialize default configuration.
	cfg, err = loadDefaultConfig()
	if err != nil {
		return cfg, err
	}

	// Load configuration from file and override default configuration options.
	if configFile != "" {
		c, err := loadConfigFromFile(configFile)
		if err != nil {
			return cfg, err
		}
		// Configuration file can specify full set or partial set of configuration
		// options. So we only want to override those options that have been specified in
		// config file, rest will remain as per default config.
		cfg.OverrideFrom(c)
	}

	return cfg, nil
}

func loadJSON(f string) (cfg Config, err error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return cfg, fmt.Errorf("config from JSON file: %w", err)
	}

	if len(b) == 0 {
		return cfg, fmt.Errorf("JSON file is empty: %w", ErrInvalidConfig)
	}

	if err = json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config from JSON document: %w", err)
	}

	return cfg, nil
}

func loadYAML(f string) (cfg Config, err error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return cfg, fmt.Errorf("config from YAML file: %w", err)
	}

	if len(strings.TrimSpace(string(b))) == 0 {
		return cfg, fmt.Errorf("YAML file is empty: %w", ErrInvalidConfig)
	}

	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config from YAML document: %w", err)
	}

	return cfg, nil
}

// fileExists is a helper to check that given path exists and is a regular file.
func fileExists(p string) bool {
	if p == "" {
		return false
	}
	fi, err := os.Stat(p)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}

// In order to support Config overriding we have to implement wrapper type for Config
// fields. Otherwise it is hard to distinguish skipped fields, for instance when loading
// partial configuration from file: in that case it would be impossible to  distinguish
// between say string fields zero value and empty string values as explicitly specified in
// configuration file.

// NewConfigVal is constructor for ConfigVal. It will wrap its argument into ConfigVal.
func NewConfigVal[T any](v T) ConfigVal[T] {
	return ConfigVal[T]{v: &v}
}

// ConfigVal is a wrapper for Config field value.
type ConfigVal[T any] struct {
	// Pointer distinguishes unspecified value from explicit zero value, e.g. empty
	// mediainfo_path disables mediainfo while absent one keeps auto-detected path.
	v *T
}

// Value will return wrapped value.
//
// In case field has not been defined e.g. is zero value, then appropriate zero value of
// wrapped type will be returned.
func (o *ConfigVal[T]) Value() T {
	if o.IsNil() {
		var v T
		return v
	}
	return *o.v
}

// IsNil check if wrapped value is nil.
func (o *ConfigVal[T]) IsNil() bool {
	return o.v == nil
}

// IsZero implements yaml.IsZeroer so that omitempty skips only unspecified values.
func (o ConfigVal[T]) IsZero() bool {
	return o.v == nil
}

// UnmarshalJSON implements json.Unmarshaler interface for ConfigVal.
func (o *ConfigVal[T]) UnmarshalJSON(b []byte) error {
	var val T
	err := json.Unmarshal(b, &val)
	if err != nil {
		return err
	}
	o.v = &val
	return nil
}

// MarshalJSON implements json.Marshaler interface for ConfigVal.
func (o ConfigVal[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value())
}

// UnmarshalYAML implements yaml.Unmarshaler interface for ConfigVal.
func (o *ConfigVal[T]) UnmarshalYAML(value *yaml.Node) error {
	var val T
	if err := value.Decode(&val); err != nil {
		return err
	}
	o.v = &val
	return nil
}

// MarshalYAML implements yaml.Marshaler interface for ConfigVal.
func (o ConfigVal[T]) MarshalYAML() (interface{}, error) {
	return o.Value(), nil
}

func CreateDumpConfCommand() *DumpConfApp {
	longHelp := `Command "dump-conf" will print actual application configuration taking into account
configuration file provided and default configuration values.

Examples:

	mediaanalyzer dump-conf
	mediaanalyzer dump-conf -conf path/to/config.yaml -format yaml`

	app := &DumpConfApp{
		fs:  flag.NewFlagSet("dump-conf", flag.ContinueOnError),
		gf:  globalFlags{},
		out: os.Stdout,
	}
	app.gf.Register(app.fs)
	app.fs.StringVar(&app.flFormat, "format", "json", "Output format: json or yaml")
	app.fs.Usage = func() {
		printSubCommandUsage(longHelp, app.fs)
	}

	return app
}

// Make sure DumpConfApp implements Commander interface.
var _ Commander = (*DumpConfApp)(nil)

// DumpConfApp is subcommand application context that implements Commander interface.
// Although this is very simple application, but for consistency sake is is implemented in
// similar style as other subcommands.
type DumpConfApp struct {
	out      io.Writer
	fs       *flag.FlagSet
	gf       globalFlags
	flFormat string
}

func (d *DumpConfApp) Name() string {
	return d.fs.Name()
}

// Run is main entry point into DumpConfApp execution.
func (d *DumpConfApp) Run(args []string) error {
	if err := d.fs.Parse(args); err != nil {
		return &AppError{
			exitCode: 2,
			msg:      "usage error",
		}
	}

	if d.gf.Debug {
		logging.EnableDebugLogger()
	}

	// Load application configuration.
	cfg, err := LoadConfig(d.gf.ConfFile)
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	switch d.flFormat {
	case "json":
		enc := json.NewEncoder(d.out)
		enc.SetIndent("", "  ")
		err = enc.Encode(cfg)
	case "yaml":
		enc := yaml.NewEncoder(d.out)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		if cErr := enc.Close(); err == nil {
			err = cErr
		}
	default:
		return &AppError{exitCode: 2, msg: fmt.Sprintf("unknown format: %s", d.flFormat)}
	}
	if err != nil {
		return &AppError{exitCode: 1, msg: err.Error()}
	}

	// Also, report if configuration is valid.
	if err := cfg.Verify(); err != nil {
		return &AppError{exitCode: 1, msg: fmt.Sprintf("configuration validation: %s", err)}
	}

	return nil
}
