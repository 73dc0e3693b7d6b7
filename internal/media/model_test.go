// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func videoWithBitrates(bitrates ...Optional[int64]) *VideoFile {
	vf := &VideoFile{}
	for i, b := range bitrates {
		vf.VideoStreams = append(vf.VideoStreams, VideoStream{Index: i, Bitrate: b})
	}
	return vf
}

func TestVideoFile_HighestBitrateVideoStream(t *testing.T) {
	unset := Optional[int64]{}
	tests := map[string]struct {
		given *VideoFile
		want  int
	}{
		"single stream": {
			given: videoWithBitrates(Some(int64(1000))),
			want:  0,
		},
		"first max wins": {
			given: videoWithBitrates(Some(int64(1000)), Some(int64(5000)), Some(int64(5000))),
			want:  1,
		},
		"max is last": {
			given: videoWithBitrates(Some(int64(1)), Some(int64(2)), Some(int64(3))),
			want:  2,
		},
		"unset never beats set": {
			given: videoWithBitrates(unset, Some(int64(10)), unset),
			want:  1,
		},
		"zero beats unset": {
			given: videoWithBitrates(unset, Some(int64(0))),
			want:  1,
		},
		"all unset": {
			given: videoWithBitrates(unset, unset),
			want:  0,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := tc.given.HighestBitrateVideoStream()
			assert.Equal(t, tc.want, got.Index)
			// Computed on demand, repeated calls agree.
			assert.Equal(t, got, tc.given.HighestBitrateVideoStream())
		})
	}
}

func TestMediaFile_MarshalJSON(t *testing.T) {
	c := Container{Path: "a.mp4", Format: "MPEG-4", Duration: 1.5, FileSize: 10}
	tests := map[string]struct {
		given    MediaFile
		wantType string
		wantKeys []string
	}{
		"video": {
			given:    &VideoFile{Container: c, VideoStreams: []VideoStream{{Codec: "h264"}}},
			wantType: "video",
			wantKeys: []string{"path", "format", "overall_bitrate", "duration", "file_size", "video_streams", "audio_streams"},
		},
		"audio": {
			given:    &AudioFile{Container: c, AudioStreams: []AudioStream{{Codec: "aac"}}},
			wantType: "audio",
			wantKeys: []string{"path", "format", "overall_bitrate", "duration", "file_size", "audio_streams"},
		},
		"summary": {
			given:    &Summary{Container: c, FileType: TypeVideo, VideoStreams: 1},
			wantType: "video",
			wantKeys: []string{"path", "format", "overall_bitrate", "duration", "file_size", "audio_streams", "video_streams"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal(tc.given)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(b, &got))
			assert.Equal(t, tc.wantType, got["type"])
			for _, k := range tc.wantKeys {
				assert.Contains(t, got, k)
			}
			assert.Nil(t, got["overall_bitrate"], "unset optional must be null")
		})
	}
}

func TestOptional(t *testing.T) {
	var unset Optional[int64]
	assert.False(t, unset.IsSet())
	assert.Equal(t, int64(0), unset.Value())

	zero := Some(int64(0))
	v, ok := zero.Get()
	assert.True(t, ok, "reported zero differs from unset")
	assert.Equal(t, int64(0), v)

	var decoded struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
		C Optional[string] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "x", "b": null}`), &decoded))
	assert.Equal(t, Some("x"), decoded.A)
	assert.False(t, decoded.B.IsSet())
	assert.False(t, decoded.C.IsSet())

	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &decoded))
}
