// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package analysis provides aggregate statistics and plots over batches of analyzed
// media files.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrNoValues = errors.New("no values")

// Stats is a descriptive summary of a sample.
type Stats struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// Describe computes Stats of values. Values are not modified.
func Describe(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrNoValues
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Stats{
		Count:  len(sorted),
		Sum:    floats.Sum(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	return s, nil
}

// WriteStatsTable writes named Stats as an aligned text table.
func WriteStatsTable(w io.Writer, names []string, stats []Stats) error {
	if len(names) != len(stats) {
		return fmt.Errorf("WriteStatsTable() %d names for %d stats", len(names), len(stats))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "metric\tcount\tmin\tmean\tmedian\tp95\tmax\tstd_dev\t")
	for i, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
			names[i], s.Count, s.Min, s.Mean, s.Median, s.P95, s.Max, s.StdDev)
	}
	return tw.Flush()
}
