// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package media turns raw probe reports into a strict metadata model.
//
// Analysis result is one of *AudioFile, *VideoFile or *Summary, all sharing Container
// level fields. Values are built once per analysis and never mutated afterwards.
package media

import "encoding/json"

// FileType classifies analyzed file by the kinds of streams it carries.
type FileType string

const (
	// TypeAudio is a file with audio streams only.
	TypeAudio FileType = "audio"
	// TypeVideo is a file with at least one video stream.
	TypeVideo FileType = "video"
)

// MediaFile is the result of analysis. It is implemented by *AudioFile, *VideoFile and
// *Summary only.
type MediaFile interface {
	// Type returns file classification.
	Type() FileType
	// ContainerInfo returns container level fields.
	ContainerInfo() Container

	isMediaFile()
}

// Container holds metadata describing the file as a whole.
type Container struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	// Overall bitrate in bits/sec.
	OverallBitrate Optional[int64] `json:"overall_bitrate"`
	// Duration in seconds.
	Duration float64 `json:"duration"`
	// File size in bytes.
	FileSize int64 `json:"file_size"`
}

// ContainerInfo returns container level fields.
func (c Container) ContainerInfo() Container {
	return c
}

// AudioStream describes single audio stream.
type AudioStream struct {
	// Position of the stream in the container.
	Index        int               `json:"index"`
	Format       string            `json:"format"`
	Codec        string            `json:"codec"`
	Duration     Optional[float64] `json:"duration"`
	SamplingRate int               `json:"sampling_rate"`
	Channels     int               `json:"channels"`
	Bitrate      Optional[int64]   `json:"bitrate"`
}

// VideoStream describes single video stream.
type VideoStream struct {
	// Position of the stream in the container.
	Index   int              `json:"index"`
	Format  string           `json:"format"`
	Codec   string           `json:"codec"`
	Profile Optional[string] `json:"profile"`
	Level   Optional[string] `json:"level"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	// Sample aspect ratio as "W:H", square pixels when the probe did not report it.
	SampleAspectRatio string `json:"sample_aspect_ratio"`
	// Display aspect ratio as "W:H".
	DisplayAspectRatio string           `json:"display_aspect_ratio"`
	PixelFormat        Optional[string] `json:"pixel_format"`
	// Frame rate as "N/D".
	FrameRate               Optional[string]  `json:"frame_rate"`
	Duration                Optional[float64] `json:"duration"`
	Bitrate                 Optional[int64]   `json:"bitrate"`
	BitDepth                Optional[int]     `json:"bit_depth"`
	FrameCount              Optional[int64]   `json:"frame_count"`
	Interlaced              bool              `json:"interlaced"`
	TransferCharacteristics Optional[string]  `json:"transfer_characteristics"`
}

// Make sure all result types implement MediaFile interface.
var (
	_ MediaFile = (*AudioFile)(nil)
	_ MediaFile = (*VideoFile)(nil)
	_ MediaFile = (*Summary)(nil)
)

// AudioFile is a file with audio streams only.
type AudioFile struct {
	Container
	AudioStreams []AudioStream `json:"audio_streams"`
}

func (*AudioFile) Type() FileType { return TypeAudio }
func (*AudioFile) isMediaFile()   {}

// MarshalJSON implements json.Marshaler interface adding "type" discriminator.
func (f *AudioFile) MarshalJSON() ([]byte, error) {
	type plain AudioFile
	return json.Marshal(struct {
		Type FileType `json:"type"`
		*plain
	}{TypeAudio, (*plain)(f)})
}

// VideoFile is a file with at least one video stream. Audio streams may be empty.
type VideoFile struct {
	Container
	VideoStreams []VideoStream `json:"video_streams"`
	AudioStreams []AudioStream `json:"audio_streams"`
}

func (*VideoFile) Type() FileType { return TypeVideo }
func (*VideoFile) isMediaFile()   {}

// MarshalJSON implements json.Marshaler interface adding "type" discriminator.
func (f *VideoFile) MarshalJSON() ([]byte, error) {
	type plain VideoFile
	return json.Marshal(struct {
		Type FileType `json:"type"`
		*plain
	}{TypeVideo, (*plain)(f)})
}

// HighestBitrateVideoStream returns the video stream with maximum bitrate. First stream
// wins a tie, a stream with unknown bitrate never wins over one with known bitrate.
func (f *VideoFile) HighestBitrateVideoStream() VideoStream {
	best := 0
	for i := 1; i < len(f.VideoStreams); i++ {
		b, ok := f.VideoStreams[i].Bitrate.Get()
		if !ok {
			continue
		}
		if cur, curOk := f.VideoStreams[best].Bitrate.Get(); !curOk || b > cur {
			best = i
		}
	}
	return f.VideoStreams[best]
}

// Summary is a lightweight result carrying container level fields and stream counts
// without per-stream details.
type Summary struct {
	Container
	FileType     FileType `json:"type"`
	AudioStreams int      `json:"audio_streams"`
	VideoStreams int      `json:"video_streams"`
}

func (s *Summary) Type() FileType { return s.FileType }
func (*Summary) isMediaFile()     {}
