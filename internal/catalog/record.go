// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package catalog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/evolution-gaming/mediaanalyzer/internal/media"
	"github.com/jszwec/csvutil"
)

// Record is a flat outcome of analyzing a single file, suitable for tabular reports.
//
// Stream level columns describe the highest bitrate video stream and the first audio
// stream. Failed analyses carry ErrorKind and Error with other columns left empty.
type Record struct {
	Path           string  `csv:"path" json:"path"`
	Type           string  `csv:"type,omitempty" json:"type,omitempty"`
	Format         string  `csv:"format,omitempty" json:"format,omitempty"`
	Duration       float64 `csv:"duration,omitempty" json:"duration,omitempty"`
	OverallBitrate int64   `csv:"overall_bitrate,omitempty" json:"overall_bitrate,omitempty"`
	FileSize       int64   `csv:"file_size,omitempty" json:"file_size,omitempty"`
	VideoStreams   int     `csv:"video_streams" json:"video_streams"`
	AudioStreams   int     `csv:"audio_streams" json:"audio_streams"`

	VideoCodec   string `csv:"video_codec,omitempty" json:"video_codec,omitempty"`
	Width        int    `csv:"width,omitempty" json:"width,omitempty"`
	Height       int    `csv:"height,omitempty" json:"height,omitempty"`
	FrameRate    string `csv:"frame_rate,omitempty" json:"frame_rate,omitempty"`
	Interlaced   bool   `csv:"interlaced" json:"interlaced"`
	VideoBitrate int64  `csv:"video_bitrate,omitempty" json:"video_bitrate,omitempty"`
	AudioCodec   string `csv:"audio_codec,omitempty" json:"audio_codec,omitempty"`
	Channels     int    `csv:"channels,omitempty" json:"channels,omitempty"`

	ErrorKind string `csv:"error_kind,omitempty" json:"error_kind,omitempty"`
	Error     string `csv:"error,omitempty" json:"error,omitempty"`
}

// Failed reports whether the record describes a failed analysis.
func (r Record) Failed() bool {
	return r.ErrorKind != ""
}

// NewRecord flattens analysis outcome for path. Exactly one of mf and err is expected to
// be non-nil.
func NewRecord(path string, mf media.MediaFile, err error) Record {
	r := Record{Path: path}
	if err != nil {
		r.ErrorKind = "error"
		var aErr *media.AnalysisError
		if errors.As(err, &aErr) {
			r.ErrorKind = aErr.Kind.String()
		}
		r.Error = err.Error()
		return r
	}

	c := mf.ContainerInfo()
	r.Type = string(mf.Type())
	r.Format = c.Format
	r.Duration = c.Duration
	r.OverallBitrate = c.OverallBitrate.Value()
	r.FileSize = c.FileSize

	switch f := mf.(type) {
	case *media.Summary:
		r.VideoStreams = f.VideoStreams
		r.AudioStreams = f.AudioStreams
	case *media.AudioFile:
		r.AudioStreams = len(f.AudioStreams)
		r.setAudio(f.AudioStreams)
	case *media.VideoFile:
		r.VideoStreams = len(f.VideoStreams)
		r.AudioStreams = len(f.AudioStreams)
		v := f.HighestBitrateVideoStream()
		r.VideoCodec = v.Codec
		r.Width = v.Width
		r.Height = v.Height
		r.FrameRate = v.FrameRate.Value()
		r.Interlaced = v.Interlaced
		r.VideoBitrate = v.Bitrate.Value()
		r.setAudio(f.AudioStreams)
	}

	return r
}

func (r *Record) setAudio(streams []media.AudioStream) {
	if len(streams) == 0 {
		return
	}
	r.AudioCodec = streams[0].Codec
	r.Channels = streams[0].Channels
}

// WriteCSV writes records as CSV with a header line.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := csvutil.NewEncoder(cw).Encode(records); err != nil {
		return fmt.Errorf("writing CSV report: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV report: %w", err)
	}
	return nil
}

// WriteJSON writes records as indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("writing JSON report: %w", err)
	}
	return nil
}
