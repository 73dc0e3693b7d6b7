// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable helpers and fixtures for tests.
package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture returns contents of a file from testdata directory.
func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

// fixturePath returns absolute path of a file from testdata directory.
func fixturePath(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	return p
}

// fakeTool creates an executable shell script with given body and returns its path.
func fakeTool(t *testing.T, name, body string) string {
	t.Helper()
	exePath := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(exePath, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
	require.NoError(t, err)
	return exePath
}

// proberFunc adapts a function to Prober interface.
type proberFunc func(ctx context.Context, path string) (*Report, error)

func (f proberFunc) Probe(ctx context.Context, path string) (*Report, error) {
	return f(ctx, path)
}
