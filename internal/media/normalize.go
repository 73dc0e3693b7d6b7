// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/evolution-gaming/mediaanalyzer/internal/probe"
)

var errUnknownScanMode = errors.New("unrecognized scan mode")

// Normalize builds MediaFile from raw probe report. When includeStreams is false the
// result is a *Summary, otherwise *AudioFile or *VideoFile.
func Normalize(path string, r *probe.Report, includeStreams bool) (MediaFile, error) {
	var audio, video []probe.Stream
	for _, s := range r.Streams {
		switch s.Kind {
		case probe.KindAudio:
			audio = append(audio, s)
		case probe.KindVideo:
			video = append(video, s)
		}
	}
	if len(audio) == 0 && len(video) == 0 {
		return nil, &AnalysisError{
			Kind:        NoStreams,
			Path:        path,
			StreamIndex: ContainerIndex,
			Diagnostic:  fmt.Sprintf("no audio or video streams among %d streams", len(r.Streams)),
		}
	}

	c, err := newContainer(path, r.Format)
	if err != nil {
		return nil, err
	}

	fileType := TypeAudio
	if len(video) > 0 {
		fileType = TypeVideo
	}

	if !includeStreams {
		return &Summary{
			Container:    c,
			FileType:     fileType,
			AudioStreams: len(audio),
			VideoStreams: len(video),
		}, nil
	}

	audioStreams := make([]AudioStream, 0, len(audio))
	for _, s := range audio {
		as, err := newAudioStream(path, s)
		if err != nil {
			return nil, err
		}
		audioStreams = append(audioStreams, as)
	}

	if fileType == TypeAudio {
		return &AudioFile{Container: c, AudioStreams: audioStreams}, nil
	}

	videoStreams := make([]VideoStream, 0, len(video))
	for _, s := range video {
		vs, err := newVideoStream(path, s, c.Duration)
		if err != nil {
			return nil, err
		}
		videoStreams = append(videoStreams, vs)
	}

	return &VideoFile{Container: c, VideoStreams: videoStreams, AudioStreams: audioStreams}, nil
}

func newContainer(path string, f probe.Fields) (c Container, err error) {
	fr := fieldReader{path: path, index: ContainerIndex, fields: f}
	c.Path = path
	if c.Format, err = fr.required(probe.FieldFormat); err != nil {
		return c, err
	}
	if c.Duration, err = fr.requiredFloat(probe.FieldDuration); err != nil {
		return c, err
	}
	if c.FileSize, err = fr.requiredInt(probe.FieldSize); err != nil {
		return c, err
	}
	if c.OverallBitrate, err = fr.optionalInt(probe.FieldBitRate); err != nil {
		return c, err
	}
	return c, nil
}

func newAudioStream(path string, s probe.Stream) (a AudioStream, err error) {
	fr := fieldReader{path: path, index: s.Index, fields: s.Fields}
	a.Index = s.Index
	if a.Format, err = fr.required(probe.FieldFormat); err != nil {
		return a, err
	}
	if a.Codec, err = fr.required(probe.FieldCodec); err != nil {
		return a, err
	}
	if a.SamplingRate, err = fr.requiredCount(probe.FieldSamplingRate); err != nil {
		return a, err
	}
	if a.Channels, err = fr.requiredCount(probe.FieldChannels); err != nil {
		return a, err
	}
	if a.Duration, err = fr.optionalFloat(probe.FieldDuration); err != nil {
		return a, err
	}
	if a.Bitrate, err = fr.optionalInt(probe.FieldBitRate); err != nil {
		return a, err
	}
	return a, nil
}

// newVideoStream maps video stream record. Container duration is used for frame count
// derivation when the stream has no duration of its own.
func newVideoStream(path string, s probe.Stream, containerDuration float64) (v VideoStream, err error) {
	fr := fieldReader{path: path, index: s.Index, fields: s.Fields}
	v.Index = s.Index
	if v.Format, err = fr.required(probe.FieldFormat); err != nil {
		return v, err
	}
	if v.Codec, err = fr.required(probe.FieldCodec); err != nil {
		return v, err
	}
	if v.Width, err = fr.requiredCount(probe.FieldWidth); err != nil {
		return v, err
	}
	if v.Height, err = fr.requiredCount(probe.FieldHeight); err != nil {
		return v, err
	}

	v.Profile = fr.optionalString(probe.FieldProfile)
	v.Level = fr.optionalString(probe.FieldLevel)
	v.PixelFormat = fr.optionalString(probe.FieldPixelFormat)
	v.TransferCharacteristics = fr.optionalString(probe.FieldTransferCharacteristics)

	if v.Duration, err = fr.optionalFloat(probe.FieldDuration); err != nil {
		return v, err
	}
	if v.Bitrate, err = fr.optionalInt(probe.FieldBitRate); err != nil {
		return v, err
	}
	depth, err := fr.optionalInt(probe.FieldBitDepth)
	if err != nil {
		return v, err
	}
	if d, ok := depth.Get(); ok {
		v.BitDepth = Some(int(d))
	}
	if v.FrameCount, err = fr.optionalInt(probe.FieldFrameCount); err != nil {
		return v, err
	}

	sar := rational{num: 1, den: 1}
	if raw, ok := s.Fields.Lookup(probe.FieldSampleAspectRatio); ok {
		if sar, err = parseRatio(raw); err != nil {
			return v, fr.invalid(probe.FieldSampleAspectRatio, raw, err.Error())
		}
	}
	v.SampleAspectRatio = sar.aspect()

	if raw, ok := s.Fields.Lookup(probe.FieldDisplayAspectRatio); ok {
		dar, err := parseRatio(raw)
		if err != nil {
			return v, fr.invalid(probe.FieldDisplayAspectRatio, raw, err.Error())
		}
		v.DisplayAspectRatio = dar.aspect()
	} else {
		dar, err := newRational(int64(v.Width)*sar.num, int64(v.Height)*sar.den)
		if err != nil {
			return v, fr.invalid(probe.FieldDisplayAspectRatio, "", err.Error())
		}
		v.DisplayAspectRatio = dar.aspect()
	}

	var rate rational
	if raw, ok := s.Fields.Lookup(probe.FieldFrameRate); ok {
		if rate, err = parseFrameRate(raw); err != nil {
			return v, fr.invalid(probe.FieldFrameRate, raw, err.Error())
		}
		v.FrameRate = Some(rate.rate())
	}

	if !v.FrameCount.IsSet() && v.FrameRate.IsSet() {
		d, ok := v.Duration.Get()
		if !ok {
			d = containerDuration
		}
		// Counts not representable as int64 stay unset.
		if n := math.Round(d * rate.float()); d > 0 && n < math.MaxInt64 {
			v.FrameCount = Some(int64(n))
		}
	}

	if raw, ok := s.Fields.Lookup(probe.FieldFieldOrder); ok {
		if v.Interlaced, err = parseInterlaced(raw); err != nil {
			return v, fr.invalid(probe.FieldFieldOrder, raw, err.Error())
		}
	}

	return v, nil
}

// parseInterlaced maps scan type or field order spellings of ffprobe and MediaInfo.
//
// The ffprobe adapter drops "unknown" so that MediaInfo scan type can fill it in. It only
// gets here from reports without a secondary source, and is taken as progressive.
func parseInterlaced(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "progressive", "unknown":
		return false, nil
	case "tt", "bb", "tb", "bt", "interlaced", "mbaff", "paff":
		return true, nil
	}
	return false, errUnknownScanMode
}

// fieldReader extracts typed values out of raw fields of a single record, turning
// absent fields into MissingField and garbage into ClassificationError.
type fieldReader struct {
	path   string
	index  int
	fields probe.Fields
}

func (fr fieldReader) missing(key string) *AnalysisError {
	return &AnalysisError{
		Kind:        MissingField,
		Path:        fr.path,
		StreamIndex: fr.index,
		Field:       key,
		Diagnostic:  fmt.Sprintf("%s: required field %q is absent", location(fr.index), key),
	}
}

func (fr fieldReader) invalid(key, value, reason string) *AnalysisError {
	return &AnalysisError{
		Kind:        ClassificationError,
		Path:        fr.path,
		StreamIndex: fr.index,
		Field:       key,
		Value:       value,
		Diagnostic:  fmt.Sprintf("%s: field %q has invalid value %q: %s", location(fr.index), key, value, reason),
	}
}

func (fr fieldReader) required(key string) (string, error) {
	v, ok := fr.fields.Lookup(key)
	if !ok {
		return "", fr.missing(key)
	}
	return v, nil
}

func (fr fieldReader) optionalString(key string) Optional[string] {
	if v, ok := fr.fields.Lookup(key); ok {
		return Some(v)
	}
	return Optional[string]{}
}

func (fr fieldReader) requiredFloat(key string) (float64, error) {
	raw, err := fr.required(key)
	if err != nil {
		return 0, err
	}
	return fr.float(key, raw)
}

func (fr fieldReader) optionalFloat(key string) (Optional[float64], error) {
	raw, ok := fr.fields.Lookup(key)
	if !ok {
		return Optional[float64]{}, nil
	}
	v, err := fr.float(key, raw)
	if err != nil {
		return Optional[float64]{}, err
	}
	return Some(v), nil
}

func (fr fieldReader) requiredInt(key string) (int64, error) {
	raw, err := fr.required(key)
	if err != nil {
		return 0, err
	}
	return fr.int(key, raw)
}

// requiredCount is requiredInt for quantities that must be positive, e.g. width.
func (fr fieldReader) requiredCount(key string) (int, error) {
	v, err := fr.requiredInt(key)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v > math.MaxInt32 {
		return 0, fr.invalid(key, strconv.FormatInt(v, 10), "out of range")
	}
	return int(v), nil
}

func (fr fieldReader) optionalInt(key string) (Optional[int64], error) {
	raw, ok := fr.fields.Lookup(key)
	if !ok {
		return Optional[int64]{}, nil
	}
	v, err := fr.int(key, raw)
	if err != nil {
		return Optional[int64]{}, err
	}
	return Some(v), nil
}

func (fr fieldReader) float(key, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fr.invalid(key, raw, "not a non-negative number")
	}
	return v, nil
}

// int accepts integral decimals too, MediaInfo writes some counts as "48000.0".
// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
func (fr fieldReader) int(key, raw string) (int64, error) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
		return v, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f >= math.MaxInt64 {
		return 0, fr.invalid(key, raw, "not a non-negative integer")
	}
	return int64(f), nil
}
