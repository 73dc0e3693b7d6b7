// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	base, err := ParseFfprobe(fixture(t, "ffprobe_test_mp4.json"))
	require.NoError(t, err)
	extra, err := ParseMediainfo(fixture(t, "mediainfo_test_mp4.json"))
	require.NoError(t, err)

	got := Merge(base, extra)

	assert.Equal(t, "testdata/test.mp4", got.Path)
	assert.Equal(t, "MPEG-4", got.Format[FieldFormat])
	assert.Equal(t, "10.016000", got.Format[FieldDuration])

	require.Len(t, got.Streams, 2)
	video := got.Streams[0].Fields
	assert.Equal(t, "AVC", video[FieldFormat])
	assert.Equal(t, "h264", video[FieldCodec])
	assert.Equal(t, "1:1", video[FieldSampleAspectRatio])
	assert.Equal(t, "16:9", video[FieldDisplayAspectRatio])
	assert.Equal(t, "25/1", video[FieldFrameRate])
	assert.Equal(t, "progressive", video[FieldFieldOrder])
	assert.Equal(t, "10", video[FieldBitDepth])

	audio := got.Streams[1].Fields
	assert.Equal(t, "AC-3", audio[FieldFormat])
	assert.Equal(t, "ac3", audio[FieldCodec])

	// Inputs are left untouched.
	assert.Equal(t, "QuickTime / MOV", base.Format[FieldFormat])
}

func TestMerge_FillsGaps(t *testing.T) {
	base := &Report{
		Path:   "a.dv",
		Format: Fields{FieldFormat: "dv"},
		Streams: []Stream{
			{Index: 0, Kind: KindVideo, Fields: Fields{FieldCodec: "dvvideo", FieldFieldOrder: "bb"}},
			{Index: 1, Kind: KindAudio, Fields: Fields{FieldCodec: "pcm_s16le"}},
			{Index: 2, Kind: KindAudio, Fields: Fields{FieldCodec: "pcm_s16le"}},
		},
	}
	extra := &Report{
		Format: Fields{FieldFormat: "DV", FieldSize: "7200000"},
		Streams: []Stream{
			{Index: 0, Kind: KindAudio, Fields: Fields{FieldFormat: "PCM", FieldChannels: "2"}},
			{Index: 1, Kind: KindVideo, Fields: Fields{FieldFormat: "DV", FieldFieldOrder: "Interlaced", FieldFrameCount: "50"}},
			{Index: 2, Kind: KindSubtitle, Fields: Fields{FieldFormat: "EIA-608"}},
		},
	}

	got := Merge(base, extra)

	assert.Equal(t, Fields{FieldFormat: "DV", FieldSize: "7200000"}, got.Format)
	require.Len(t, got.Streams, 3, "streams known only to secondary are dropped")
	assert.Equal(t, Fields{
		FieldFormat:     "DV",
		FieldCodec:      "dvvideo",
		FieldFieldOrder: "bb",
		FieldFrameCount: "50",
	}, got.Streams[0].Fields)
	assert.Equal(t, Fields{FieldFormat: "PCM", FieldCodec: "pcm_s16le", FieldChannels: "2"}, got.Streams[1].Fields)
	assert.Equal(t, Fields{FieldCodec: "pcm_s16le"}, got.Streams[2].Fields)
}

func TestMerge_UnknownFieldOrder(t *testing.T) {
	base, err := ParseFfprobe([]byte(`{
		"streams": [{"index": 0, "codec_type": "video", "codec_name": "mpeg2video",
			"field_order": "unknown", "color_transfer": "unknown"}],
		"format": {"format_name": "mpegts"}
	}`))
	require.NoError(t, err)
	_, ok := base.Streams[0].Fields.Lookup(FieldFieldOrder)
	require.False(t, ok, "unknown field order should be absent")
	_, ok = base.Streams[0].Fields.Lookup(FieldTransferCharacteristics)
	require.False(t, ok, "unknown transfer should be absent")

	extra := &Report{
		Streams: []Stream{
			{Index: 0, Kind: KindVideo, Fields: Fields{FieldFieldOrder: "Interlaced"}},
		},
	}

	got := Merge(base, extra)
	assert.Equal(t, "Interlaced", got.Streams[0].Fields[FieldFieldOrder])
}

func TestCombined_Probe(t *testing.T) {
	ok := proberFunc(func(_ context.Context, path string) (*Report, error) {
		return &Report{Path: path, Format: Fields{FieldFormat: "mp4"}}, nil
	})
	failing := proberFunc(func(_ context.Context, path string) (*Report, error) {
		return nil, &Error{Tool: "mediainfo", Path: path, Diagnostic: "boom"}
	})

	t.Run("Should merge reports", func(t *testing.T) {
		c := &Combined{Primary: ok, Secondary: ok}
		got, err := c.Probe(context.Background(), "a.mp4")
		require.NoError(t, err)
		assert.Equal(t, "a.mp4", got.Path)
	})

	t.Run("Should fail if primary fails", func(t *testing.T) {
		c := &Combined{Primary: failing, Secondary: ok}
		_, err := c.Probe(context.Background(), "a.mp4")
		assert.EqualError(t, err, "mediainfo failed for a.mp4: boom")
	})

	t.Run("Should fail if secondary fails", func(t *testing.T) {
		c := &Combined{Primary: ok, Secondary: failing}
		_, err := c.Probe(context.Background(), "a.mp4")
		var pErr *Error
		assert.ErrorAs(t, err, &pErr)
	})
}
