// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import "context"

// Fields for which the secondary report takes precedence when merging.
var secondaryPreferred = map[string]bool{
	FieldFormat:                  true,
	FieldBitDepth:                true,
	FieldFrameCount:              true,
	FieldTransferCharacteristics: true,
}

// Make sure Combined implements Prober interface.
var _ Prober = (*Combined)(nil)

// Combined runs two probers against the same file and merges their reports.
//
// Primary (ffprobe) decides which streams exist; Secondary (mediainfo) contributes human
// readable format names and fills gaps. Failure of either prober fails the probe.
type Combined struct {
	Primary   Prober
	Secondary Prober
}

// Probe implements Prober interface.
func (c *Combined) Probe(ctx context.Context, path string) (*Report, error) {
	base, err := c.Primary.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	extra, err := c.Secondary.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	return Merge(base, extra), nil
}

// Merge returns a new Report with extra overlaid on base. Streams are paired by kind and
// order of appearance, streams present only in extra are dropped.
func Merge(base, extra *Report) *Report {
	r := &Report{
		Path:    base.Path,
		Format:  overlay(base.Format, extra.Format),
		Streams: make([]Stream, 0, len(base.Streams)),
	}

	byKind := make(map[Kind][]Stream)
	for _, s := range extra.Streams {
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}

	seen := make(map[Kind]int)
	for _, s := range base.Streams {
		var src Fields
		n := seen[s.Kind]
		if candidates := byKind[s.Kind]; n < len(candidates) {
			src = candidates[n].Fields
		}
		seen[s.Kind] = n + 1
		r.Streams = append(r.Streams, Stream{Index: s.Index, Kind: s.Kind, Fields: overlay(s.Fields, src)})
	}

	return r
}

// overlay copies dst and merges src into the copy.
func overlay(dst, src Fields) Fields {
	out := make(Fields, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if secondaryPreferred[k] {
			out.set(k, v)
			continue
		}
		out.setDefault(k, v)
	}
	return out
}
