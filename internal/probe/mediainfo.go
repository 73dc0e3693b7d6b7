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

const mediainfoTool = "mediainfo"

// DefaultMediainfoArgs are mediainfo arguments placed in front of the probed file path.
var DefaultMediainfoArgs = "--Output=JSON"

// Make sure Mediainfo implements Prober interface.
var _ Prober = (*Mediainfo)(nil)

// Mediainfo is a Prober backed by MediaInfo JSON output.
//
// MediaInfo names formats the way humans do ("MPEG-4", "AVC", "AC-3") and knows bit
// depth, frame count and transfer characteristics for more containers than ffprobe does.
type Mediainfo struct {
	exePath string
	args    []string
}

// NewMediainfo creates Mediainfo prober.
func NewMediainfo(exePath, args string) (*Mediainfo, error) {
	a, err := splitArgs(args)
	if err != nil {
		return nil, fmt.Errorf("NewMediainfo(): %w", err)
	}
	return &Mediainfo{exePath: exePath, args: a}, nil
}

// Probe implements Prober interface.
func (m *Mediainfo) Probe(ctx context.Context, path string) (*Report, error) {
	out, stderr, err := runTool(ctx, mediainfoTool, m.exePath, m.args, path)
	var pErr *Error
	if errors.As(err, &pErr) {
		return nil, pErr
	}
	if err != nil {
		return nil, failure(mediainfoTool, path, stderr, err)
	}

	r, err := ParseMediainfo(out)
	if err != nil {
		// MediaInfo prints nothing at all for files it cannot open.
		if diag := lastLine(stderr); diag != "" {
			return nil, &Error{Tool: mediainfoTool, Path: path, Diagnostic: diag, Err: err}
		}
		return nil, &Error{Tool: mediainfoTool, Path: path, Diagnostic: "malformed output: " + err.Error(), Err: err}
	}
	r.Path = path

	return r, nil
}

type mediainfoOutput struct {
	Media *struct {
		Ref   string           `json:"@ref"`
		Track []map[string]any `json:"track"`
	} `json:"media"`
}

// ParseMediainfo converts MediaInfo JSON output into a Report. Exported for testing
// without a real mediainfo binary.
func ParseMediainfo(data []byte) (*Report, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no output")
	}
	var raw mediainfoOutput
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse mediainfo JSON: %w", err)
	}
	if raw.Media == nil {
		return nil, errors.New("no media section")
	}

	r := &Report{Path: raw.Media.Ref, Format: Fields{}}
	pos := 0
	for _, t := range raw.Media.Track {
		trackType := scalar(t, "@type")
		if trackType == "General" {
			r.Format.set(FieldFormat, scalar(t, "Format"))
			r.Format.set(FieldDuration, scalar(t, "Duration"))
			r.Format.set(FieldBitRate, scalar(t, "OverallBitRate"))
			r.Format.set(FieldSize, scalar(t, "FileSize"))
			continue
		}
		r.Streams = append(r.Streams, convertMediainfoTrack(pos, trackType, t))
		pos++
	}

	return r, nil
}

func convertMediainfoTrack(pos int, trackType string, t map[string]any) Stream {
	st := Stream{Index: pos, Kind: mediainfoKind(trackType), Fields: Fields{}}
	// StreamOrder may be "0-1" for programs in transport streams, ignore those.
	if idx, err := strconv.Atoi(scalar(t, "StreamOrder")); err == nil {
		st.Index = idx
	}

	f := st.Fields
	f.set(FieldFormat, scalar(t, "Format"))
	f.set(FieldCodec, scalar(t, "CodecID"))
	f.set(FieldDuration, scalar(t, "Duration"))
	f.set(FieldBitRate, scalar(t, "BitRate"))
	f.setDefault(FieldBitRate, scalar(t, "BitRate_Nominal"))

	switch st.Kind {
	case KindVideo:
		f.set(FieldProfile, scalar(t, "Format_Profile"))
		f.set(FieldLevel, scalar(t, "Format_Level"))
		f.set(FieldWidth, scalar(t, "Width"))
		f.set(FieldHeight, scalar(t, "Height"))
		f.set(FieldSampleAspectRatio, scalar(t, "PixelAspectRatio"))
		f.set(FieldDisplayAspectRatio, scalar(t, "DisplayAspectRatio"))
		f.set(FieldFrameRate, scalar(t, "FrameRate"))
		f.set(FieldBitDepth, scalar(t, "BitDepth"))
		f.set(FieldFrameCount, scalar(t, "FrameCount"))
		f.set(FieldFieldOrder, scalar(t, "ScanType"))
		f.set(FieldTransferCharacteristics, scalar(t, "transfer_characteristics"))
	case KindAudio:
		f.set(FieldSamplingRate, scalar(t, "SamplingRate"))
		f.set(FieldChannels, scalar(t, "Channels"))
	}

	return st
}

func mediainfoKind(trackType string) Kind {
	switch strings.ToLower(trackType) {
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	case "text":
		return KindSubtitle
	case "image":
		return KindAttachment
	case "menu":
		return KindData
	}
	return KindOther
}
