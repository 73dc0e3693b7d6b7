// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Number of iterations for stress scenarios.
var stressIter int = 100_000

func Test_Store_HappyPath(t *testing.T) {
	store := NewStore()
	assert.Zero(t, store.Len())
	assert.Empty(t, store.Records())

	r1 := Record{Path: "b.mp4"}
	r2 := Record{Path: "a.mp4"}
	id1 := store.Insert(r1)
	id2 := store.Insert(r2)

	t.Run("IDs are sequential", func(t *testing.T) {
		assert.Equal(t, id1+1, id2)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("Records are sorted by path", func(t *testing.T) {
		assert.Equal(t, []Record{r2, r1}, store.Records())
	})

	t.Run("Records with same path keep insertion order", func(t *testing.T) {
		dup := Record{Path: "a.mp4", ErrorKind: "probe failed"}
		store.Insert(dup)
		assert.Equal(t, []Record{r2, dup, r1}, store.Records())
	})

	t.Run("Records returns a snapshot", func(t *testing.T) {
		got := store.Records()
		got[0].Path = "changed.mp4"
		assert.Equal(t, "a.mp4", store.Records()[0].Path)
	})
}

func Test_Store_StressInsert(t *testing.T) {
	var wg sync.WaitGroup
	store := NewStore()
	for i := 0; i < stressIter; i++ {
		wg.Add(1)
		go func(iter int) {
			defer wg.Done()
			store.Insert(Record{Path: fmt.Sprintf("file%06d.mp4", iter)})
		}(i)
	}
	wg.Wait()

	require.Equal(t, stressIter, store.Len())
	records := store.Records()
	require.Len(t, records, stressIter)
	for i, r := range records {
		if want := fmt.Sprintf("file%06d.mp4", i); r.Path != want {
			t.Fatalf("Record %d: got %s, want %s", i, r.Path, want)
		}
	}
}
