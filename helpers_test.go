// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable helpers and fixtures for tests.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/evolution-gaming/mediaanalyzer/internal/tools"
	"github.com/stretchr/testify/require"
)

// Directory with recorded ffprobe outputs.
const probeTestdata = "internal/probe/testdata"

// fakeFfprobe is a stand-in for ffprobe: "media" files are recorded ffprobe JSON outputs
// so it prints the last argument and, like ffprobe with -show_error, exits with failure
// when that output carries an error section.
const fakeFfprobe = `#!/bin/sh
for a; do f="$a"; done
cat "$f" || exit 1
grep -q '"error"' "$f" && exit 1
exit 0
`

// fixFakeFfprobe creates fake ffprobe executable and makes it auto-detectable via
// environment variable.
func fixFakeFfprobe(t *testing.T) (exePath string) {
	t.Helper()
	exePath = filepath.Join(t.TempDir(), "ffprobe")
	require.NoError(t, os.WriteFile(exePath, []byte(fakeFfprobe), 0o755))
	t.Setenv(tools.FfprobeEnvVar, exePath)
	return exePath
}

// fixConfFile fixture creates configuration file that uses fake ffprobe and disables
// mediainfo.
func fixConfFile(t *testing.T) (confFile string) {
	t.Helper()
	ffprobe := fixFakeFfprobe(t)
	payload := fmt.Sprintf(`{
		"ffprobe_path": %q,
		"mediainfo_path": "",
		"probe_timeout": "10s",
		"workers": 2
	}`, ffprobe)
	confFile = filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(confFile, []byte(payload), 0o644))
	return confFile
}

// fixMediaFile fixture copies recorded ffprobe output into dir under given name, it will
// act as a media file for fake ffprobe.
func fixMediaFile(t *testing.T, dir, name, fixture string) (fPath string) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(probeTestdata, fixture))
	require.NoError(t, err)
	fPath = filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(fPath), 0o755))
	require.NoError(t, os.WriteFile(fPath, b, 0o644))
	return fPath
}

// requireAppError asserts that err is *AppError with given exit code.
func requireAppError(t *testing.T, err error, exitCode int) *AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, exitCode, appErr.ExitCode(), "unexpected exit code, error: %s", err)
	return appErr
}
