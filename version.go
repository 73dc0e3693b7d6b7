// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Application version string related functionality.
//
// Version comes either from -ldflags="-X main.version={ver}" or, for binaries installed
// with "go install", from debug.BuildInfo.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"
)

// Value injected during build with -ldflags="-X main.version={ver}".
var (
	version string
	vInfo   = readVersionInfo(version, debug.ReadBuildInfo)
)

// versionInfo is struct that includes relevant version information.
type versionInfo struct {
	time      time.Time
	version   string
	revision  string
	goVersion string
}

// readVersionInfo combines injected version with build information.
func readVersionInfo(injected string, readBuildInfo func() (*debug.BuildInfo, bool)) versionInfo {
	v := versionInfo{version: injected}
	bi, ok := readBuildInfo()
	if !ok {
		return v
	}
	if v.version == "" {
		v.version = bi.Main.Version
	}
	v.goVersion = bi.GoVersion

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.revision = s.Value
		case "vcs.time":
			v.time, _ = time.Parse(time.RFC3339, s.Value)
		}
	}
	return v
}

func (v versionInfo) String() string {
	s := v.version
	if s == "" {
		s = "(devel)"
	}
	if v.revision != "" {
		s += " " + v.revision
	}
	if !v.time.IsZero() {
		s += " " + v.time.UTC().Format(time.DateOnly)
	}
	if v.goVersion != "" {
		s += " " + v.goVersion
	}
	return s
}

// Make sure VersionApp implements Commander interface.
var _ Commander = (*VersionApp)(nil)

// VersionApp prints application version.
type VersionApp struct {
	fs  *flag.FlagSet
	out io.Writer
}

func CreateVersionCommand() *VersionApp {
	app := &VersionApp{
		fs:  flag.NewFlagSet("version", flag.ContinueOnError),
		out: os.Stdout,
	}
	app.fs.Usage = func() {
		printSubCommandUsage(`Command "version" prints mediaanalyzer version and exits.`, app.fs)
	}
	return app
}

func (a *VersionApp) Name() string {
	return a.fs.Name()
}

func (a *VersionApp) Run(args []string) error {
	if err := a.fs.Parse(args); err != nil {
		return &AppError{exitCode: 2, msg: "usage error"}
	}
	fmt.Fprintf(a.out, "mediaanalyzer %s\n", vInfo)
	return nil
}
