// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Reusable helpers and fixtures for tests.
package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/evolution-gaming/mediaanalyzer/internal/probe"
	"github.com/stretchr/testify/require"
)

// Probe fixtures are shared with probe package.
const fixturesDir = "../probe/testdata"

// fixReport parses ffprobe fixture and, when mediainfoFixture is not empty, merges
// matching MediaInfo fixture into it.
func fixReport(t *testing.T, ffprobeFixture, mediainfoFixture string) *probe.Report {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(fixturesDir, ffprobeFixture))
	require.NoError(t, err)
	r, err := probe.ParseFfprobe(b)
	require.NoError(t, err)
	if mediainfoFixture == "" {
		return r
	}
	b, err = os.ReadFile(filepath.Join(fixturesDir, mediainfoFixture))
	require.NoError(t, err)
	extra, err := probe.ParseMediainfo(b)
	require.NoError(t, err)
	return probe.Merge(r, extra)
}

// fixContainer returns valid container fields.
func fixContainer() probe.Fields {
	return probe.Fields{
		probe.FieldFormat:   "MPEG-4",
		probe.FieldDuration: "10.0",
		probe.FieldSize:     "1000",
		probe.FieldBitRate:  "800",
	}
}

// fixVideoFields returns valid video stream fields with overrides applied. Override with
// empty value removes the field.
func fixVideoFields(overrides probe.Fields) probe.Fields {
	f := probe.Fields{
		probe.FieldFormat: "AVC",
		probe.FieldCodec:  "h264",
		probe.FieldWidth:  "1920",
		probe.FieldHeight: "1080",
	}
	return apply(f, overrides)
}

// fixAudioFields returns valid audio stream fields with overrides applied.
func fixAudioFields(overrides probe.Fields) probe.Fields {
	f := probe.Fields{
		probe.FieldFormat:       "AAC",
		probe.FieldCodec:        "aac",
		probe.FieldSamplingRate: "48000",
		probe.FieldChannels:     "2",
	}
	return apply(f, overrides)
}

func apply(f, overrides probe.Fields) probe.Fields {
	for k, v := range overrides {
		if v == "" {
			delete(f, k)
			continue
		}
		f[k] = v
	}
	return f
}

// staticProber returns the same outcome for every path.
type staticProber struct {
	report *probe.Report
	err    error
}

func (p staticProber) Probe(_ context.Context, _ string) (*probe.Report, error) {
	return p.report, p.err
}
