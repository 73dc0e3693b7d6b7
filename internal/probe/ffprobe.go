// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const ffprobeTool = "ffprobe"

// DefaultFfprobeArgs are ffprobe arguments placed in front of the probed file path.
var DefaultFfprobeArgs = "-hide_banner -loglevel error -show_error -show_format -show_streams -print_format json"

// Make sure Ffprobe implements Prober interface.
var _ Prober = (*Ffprobe)(nil)

// Ffprobe is a Prober backed by ffprobe JSON output.
type Ffprobe struct {
	exePath string
	args    []string
}

// NewFfprobe creates Ffprobe. Arguments are given as a single shell-like string and must
// make ffprobe print JSON with format and streams sections.
func NewFfprobe(exePath, args string) (*Ffprobe, error) {
	a, err := splitArgs(args)
	if err != nil {
		return nil, fmt.Errorf("NewFfprobe(): %w", err)
	}
	return &Ffprobe{exePath: exePath, args: a}, nil
}

// Probe implements Prober interface.
func (f *Ffprobe) Probe(ctx context.Context, path string) (*Report, error) {
	out, stderr, err := runTool(ctx, ffprobeTool, f.exePath, f.args, path)
	var pErr *Error
	if errors.As(err, &pErr) {
		return nil, pErr
	}

	raw, jsonErr := decodeFfprobe(out)
	// With -show_error ffprobe reports failures as JSON and exits non-zero, that message is
	// the most precise diagnostic available.
	if jsonErr == nil && raw.Error != nil && raw.Error.String != "" {
		return nil, &Error{Tool: ffprobeTool, Path: path, Diagnostic: raw.Error.String, Err: err}
	}
	if err != nil {
		return nil, failure(ffprobeTool, path, stderr, err)
	}
	if jsonErr != nil {
		return nil, &Error{Tool: ffprobeTool, Path: path, Diagnostic: "malformed output: " + jsonErr.Error(), Err: jsonErr}
	}
	if raw.Format == nil && len(raw.Streams) == 0 {
		return nil, &Error{Tool: ffprobeTool, Path: path, Diagnostic: "empty output"}
	}

	return raw.report(path), nil
}

// ParseFfprobe converts ffprobe JSON output into a Report. Exported for testing without a
// real ffprobe binary.
func ParseFfprobe(data []byte) (*Report, error) {
	raw, err := decodeFfprobe(data)
	if err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if raw.Error != nil && raw.Error.String != "" {
		return nil, fmt.Errorf("ffprobe reported error %d: %s", raw.Error.Code, raw.Error.String)
	}
	path, _ := raw.Format["filename"].(string)
	return raw.report(path), nil
}

// ffprobe JSON wire types. Objects are kept as generic maps since only scalars are
// interesting and ffprobe freely mixes numbers and numeric strings.
type ffprobeOutput struct {
	Streams []map[string]any `json:"streams"`
	Format  map[string]any   `json:"format"`
	Error   *ffprobeError    `json:"error"`
}

type ffprobeError struct {
	Code   int    `json:"code"`
	String string `json:"string"`
}

func decodeFfprobe(data []byte) (*ffprobeOutput, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no output")
	}
	raw := &ffprobeOutput{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (o *ffprobeOutput) report(path string) *Report {
	r := &Report{Path: path, Format: Fields{}}

	r.Format.set(FieldFormat, scalar(o.Format, "format_long_name"))
	r.Format.setDefault(FieldFormat, scalar(o.Format, "format_name"))
	r.Format.set(FieldDuration, scalar(o.Format, "duration"))
	r.Format.set(FieldBitRate, scalar(o.Format, "bit_rate"))
	r.Format.set(FieldSize, scalar(o.Format, "size"))

	for i, s := range o.Streams {
		r.Streams = append(r.Streams, convertFfprobeStream(i, s))
	}
	return r
}

func convertFfprobeStream(pos int, s map[string]any) Stream {
	st := Stream{Index: pos, Kind: ffprobeKind(s), Fields: Fields{}}
	if idx, err := strconv.Atoi(scalar(s, "index")); err == nil {
		st.Index = idx
	}

	f := st.Fields
	codec := scalar(s, "codec_name")
	f.set(FieldFormat, scalar(s, "codec_long_name"))
	f.setDefault(FieldFormat, codec)
	f.set(FieldCodec, codec)
	f.set(FieldProfile, scalar(s, "profile"))
	f.set(FieldLevel, ffprobeLevel(codec, scalar(s, "level")))
	f.set(FieldDuration, scalar(s, "duration"))
	f.set(FieldBitRate, scalar(s, "bit_rate"))
	// Matroska muxers store stream bitrate in statistics tags only.
	tags := object(s, "tags")
	f.setDefault(FieldBitRate, scalar(tags, "BPS"))
	f.setDefault(FieldBitRate, scalar(tags, "BPS-eng"))

	switch st.Kind {
	case KindVideo:
		f.set(FieldWidth, scalar(s, "width"))
		f.set(FieldHeight, scalar(s, "height"))
		f.set(FieldSampleAspectRatio, scalar(s, "sample_aspect_ratio"))
		f.set(FieldDisplayAspectRatio, scalar(s, "display_aspect_ratio"))
		f.set(FieldPixelFormat, scalar(s, "pix_fmt"))
		f.set(FieldFrameRate, scalar(s, "r_frame_rate"))
		f.setDefault(FieldFrameRate, scalar(s, "avg_frame_rate"))
		f.set(FieldBitDepth, scalar(s, "bits_per_raw_sample"))
		f.set(FieldFrameCount, scalar(s, "nb_frames"))
		// ffprobe spells "did not look" as unknown for these, leave room for MediaInfo.
		setKnown(f, FieldFieldOrder, scalar(s, "field_order"))
		setKnown(f, FieldTransferCharacteristics, scalar(s, "color_transfer"))
	case KindAudio:
		f.set(FieldSamplingRate, scalar(s, "sample_rate"))
		f.set(FieldChannels, scalar(s, "channels"))
	}

	return st
}

// setKnown is Fields.set that also treats literal "unknown" as absent.
func setKnown(f Fields, key, v string) {
	if strings.EqualFold(strings.TrimSpace(v), "unknown") {
		return
	}
	f.set(key, v)
}

func ffprobeKind(s map[string]any) Kind {
	switch scalar(s, "codec_type") {
	case "video":
		// Cover art is muxed as a single-frame video stream.
		if scalar(object(s, "disposition"), "attached_pic") == "1" {
			return KindAttachment
		}
		return KindVideo
	case "audio":
		return KindAudio
	case "subtitle":
		return KindSubtitle
	case "attachment":
		return KindAttachment
	case "data":
		return KindData
	}
	return KindOther
}

// ffprobeLevel renders codec level the way it is usually written, ffprobe reports raw
// level_idc values.
func ffprobeLevel(codec, level string) string {
	n, err := strconv.Atoi(level)
	if err != nil {
		return level
	}
	if n <= 0 {
		// -99 is FF_LEVEL_UNKNOWN.
		return ""
	}
	switch codec {
	case "h264":
		if n == 9 {
			return "1b"
		}
		return fmt.Sprintf("%d.%d", n/10, n%10)
	case "hevc":
		if n%30 == 0 {
			return strconv.Itoa(n / 30)
		}
		return fmt.Sprintf("%d.%d", n/30, (n%30)/3)
	}
	return level
}

// scalar returns textual representation of a JSON scalar stored under key.
func scalar(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func object(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}
