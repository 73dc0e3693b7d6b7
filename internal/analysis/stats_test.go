// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := map[string]struct {
		given []float64
		want  Stats
	}{
		"single value": {
			given: []float64{10.016},
			want:  Stats{Count: 1, Sum: 10.016, Min: 10.016, Max: 10.016, Mean: 10.016, Median: 10.016, P95: 10.016},
		},
		"unsorted values": {
			given: []float64{4, 1, 3, 2},
			want:  Stats{Count: 4, Sum: 10, Min: 1, Max: 4, Mean: 2.5, StdDev: 1.2909944487358056, Median: 2, P95: 4},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Describe(tc.given)
			require.NoError(t, err)
			assert.Equal(t, tc.want.Count, got.Count)
			assert.InDelta(t, tc.want.Sum, got.Sum, 1e-9)
			assert.InDelta(t, tc.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tc.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tc.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tc.want.StdDev, got.StdDev, 1e-9)
			assert.InDelta(t, tc.want.Median, got.Median, 1e-9)
			assert.InDelta(t, tc.want.P95, got.P95, 1e-9)
		})
	}

	t.Run("Should not modify input", func(t *testing.T) {
		values := []float64{3, 1, 2}
		_, err := Describe(values)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 1, 2}, values)
	})

	t.Run("Should fail on empty input", func(t *testing.T) {
		_, err := Describe(nil)
		assert.ErrorIs(t, err, ErrNoValues)
	})
}

func TestWriteStatsTable(t *testing.T) {
	s, err := Describe([]float64{1, 2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteStatsTable(&buf, []string{"duration"}, []Stats{s}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "median")
	assert.Contains(t, lines[1], "duration")
	assert.Contains(t, lines[1], "2.000")

	assert.Error(t, WriteStatsTable(&buf, []string{"a", "b"}, []Stats{s}))
}
