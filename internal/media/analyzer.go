// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"context"
	"errors"
	"time"

	"github.com/evolution-gaming/mediaanalyzer/internal/logging"
	"github.com/evolution-gaming/mediaanalyzer/internal/probe"
)

// Analyzer probes media files and normalizes probe reports.
//
// Analyzer holds no mutable state, a single instance may be used from many goroutines.
type Analyzer struct {
	Prober probe.Prober
	// Timeout bounds a single probe invocation, zero means no limit.
	Timeout time.Duration
}

// NewAnalyzer creates Analyzer.
func NewAnalyzer(p probe.Prober, timeout time.Duration) *Analyzer {
	return &Analyzer{Prober: p, Timeout: timeout}
}

// Analyze probes file at path and returns its metadata. With includeStreams set the
// result is *AudioFile or *VideoFile, otherwise *Summary.
//
// All failures are returned as *AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, path string, includeStreams bool) (MediaFile, error) {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	report, err := a.Prober.Probe(ctx, path)
	if err != nil {
		return nil, probeFailed(path, err)
	}

	mf, err := Normalize(path, report, includeStreams)
	if err != nil {
		logging.Logger().Debug().Str("path", path).Err(err).Msg("normalization failed")
		return nil, err
	}
	logging.Logger().Debug().
		Str("path", path).
		Str("type", string(mf.Type())).
		Int("streams", len(report.Streams)).
		Msg("analyzed")

	return mf, nil
}

func probeFailed(path string, err error) *AnalysisError {
	diag := err.Error()
	var pErr *probe.Error
	if errors.As(err, &pErr) {
		diag = pErr.Diagnostic
	}
	return &AnalysisError{
		Kind:        ProbeFailed,
		Path:        path,
		StreamIndex: ContainerIndex,
		Diagnostic:  diag,
		Err:         err,
	}
}
