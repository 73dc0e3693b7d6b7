// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Tests for reusable parts of mediaanalyzer application and subcommand infrastructure.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_inputFiles(t *testing.T) {
	var in inputFiles
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&in, "i", "input")

	err := fs.Parse([]string{"-i", "a.mp4", "-i", "b.mkv"})
	require.NoError(t, err)
	assert.Equal(t, inputFiles{"a.mp4", "b.mkv"}, in)
	assert.Equal(t, "a.mp4, b.mkv", in.String())
}

func Test_isNonEmptyDir(t *testing.T) {
	empty := t.TempDir()
	nonEmpty := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(nonEmpty, "f"), nil, 0o644))

	tests := map[string]struct {
		given string
		want  bool
	}{
		"Empty dir":       {given: empty, want: false},
		"Non-empty dir":   {given: nonEmpty, want: true},
		"Non-existent":    {given: filepath.Join(empty, "nope"), want: false},
		"Regular file":    {given: filepath.Join(nonEmpty, "f"), want: false},
		"Empty path name": {given: "", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNonEmptyDir(tt.given))
		})
	}
}

func Test_collectMediaFiles(t *testing.T) {
	root := t.TempDir()
	touch := func(name string) string {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		return p
	}
	a := touch("a.mp4")
	b := touch("sub/b.mkv")
	c := touch("sub/deeper/c.wav")
	touch(".hidden.mp4")
	touch(".cache/d.mp4")
	// Another temporary dir sorts after root.
	single := filepath.Join(t.TempDir(), "single.mov")
	require.NoError(t, os.WriteFile(single, nil, 0o644))

	got, err := collectMediaFiles([]string{root, single, a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c, single}, got)
}

func Test_collectMediaFiles_Negative(t *testing.T) {
	_, err := collectMediaFiles([]string{filepath.Join(t.TempDir(), "non-existent")})
	assert.ErrorContains(t, err, "collecting input files: ")
}

func Test_root(t *testing.T) {
	tests := map[string]struct {
		args     []string
		exitCode int
	}{
		"No command":      {args: nil, exitCode: 2},
		"Unknown command": {args: []string{"encode"}, exitCode: 2},
		"Help":            {args: []string{"-h"}, exitCode: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			requireAppError(t, root(tt.args), tt.exitCode)
		})
	}
}
