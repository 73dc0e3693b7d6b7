// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package probe runs external media inspection tools and turns their output into a raw,
// loosely-typed Report: container fields plus an ordered list of per-stream records, all
// values kept as text. Interpreting those values is left to the caller.
package probe

import (
	"context"
	"strings"
)

// Canonical field names used in Report.Format and Stream.Fields. Adapters translate
// tool-specific keys into these.
const (
	FieldFormat                  = "format"
	FieldDuration                = "duration"
	FieldBitRate                 = "bit_rate"
	FieldSize                    = "size"
	FieldCodec                   = "codec"
	FieldProfile                 = "profile"
	FieldLevel                   = "level"
	FieldWidth                   = "width"
	FieldHeight                  = "height"
	FieldSampleAspectRatio       = "sample_aspect_ratio"
	FieldDisplayAspectRatio      = "display_aspect_ratio"
	FieldPixelFormat             = "pixel_format"
	FieldFrameRate               = "frame_rate"
	FieldBitDepth                = "bit_depth"
	FieldFrameCount              = "frame_count"
	FieldFieldOrder              = "field_order"
	FieldTransferCharacteristics = "transfer_characteristics"
	FieldSamplingRate            = "sampling_rate"
	FieldChannels                = "channels"
)

// Kind is the stream type as reported by the probing tool.
type Kind string

const (
	KindAudio      Kind = "audio"
	KindVideo      Kind = "video"
	KindSubtitle   Kind = "subtitle"
	KindAttachment Kind = "attachment"
	KindData       Kind = "data"
	KindOther      Kind = "other"
)

// Fields maps a canonical field name to its raw textual value.
type Fields map[string]string

// Lookup returns the value stored under key and whether it is present. Values that are
// empty after trimming count as absent.
func (f Fields) Lookup(key string) (string, bool) {
	v, ok := f[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// set stores v under key unless v is one of the spellings tools use for "don't know".
func (f Fields) set(key, v string) {
	if isUnknown(v) {
		return
	}
	f[key] = strings.TrimSpace(v)
}

// setDefault is like set but keeps an already present value.
func (f Fields) setDefault(key, v string) {
	if _, ok := f.Lookup(key); ok {
		return
	}
	f.set(key, v)
}

func isUnknown(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "n/a", "0/0", "0:1":
		return true
	}
	return false
}

// Stream is a single raw stream record.
type Stream struct {
	// Position of the stream in the container as reported by the tool.
	Index  int
	Kind   Kind
	Fields Fields
}

// Report is the raw outcome of probing one file.
type Report struct {
	Path    string
	Format  Fields
	Streams []Stream
}

// Prober is the interface that wraps the Probe method.
//
// Probe inspects the media file at path. Any failure to run the tool or to make sense of
// its output is returned as *Error.
type Prober interface {
	Probe(ctx context.Context, path string) (*Report, error)
}
