// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Locating external media inspection tools.
package tools

import (
	"fmt"
	"os"
	"os/exec"
)

const (
	ffprobeCmd   = "ffprobe"
	mediainfoCmd = "mediainfo"

	// Environment variables overriding tool location.
	FfprobeEnvVar   = "MEDIAANALYZER_FFPROBE"
	MediainfoEnvVar = "MEDIAANALYZER_MEDIAINFO"
)

// FindTool will find tool executable in $PATH with possibility to override it
// via environment variable.
func FindTool(exeName, overrideEnvVar string) (string, error) {
	// First check for executable in case it's overridden via env variable.
	if overrideEnvVar != "" {
		if p := os.Getenv(overrideEnvVar); p != "" {
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}

	// Look for executable in $PATH.
	if p, err := exec.LookPath(exeName); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("binary (%s) not found", exeName)
}

// FfprobePath will return path to ffprobe binary and error if path is not found.
func FfprobePath() (string, error) {
	p, err := FindTool(ffprobeCmd, FfprobeEnvVar)
	if err != nil {
		return "", fmt.Errorf("ffprobe not found: %w", err)
	}
	return p, nil
}

// MediainfoPath will return path to mediainfo binary and error if path is not found.
func MediainfoPath() (string, error) {
	p, err := FindTool(mediainfoCmd, MediainfoEnvVar)
	if err != nil {
		return "", fmt.Errorf("mediainfo not found: %w", err)
	}
	return p, nil
}
