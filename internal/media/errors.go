// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of analysis failure kinds.
type ErrorKind int

const (
	// ProbeFailed means the probing tool could not run or failed.
	ProbeFailed ErrorKind = iota + 1
	// NoStreams means the file has neither audio nor video streams.
	NoStreams
	// MissingField means a required field is absent.
	MissingField
	// ClassificationError means a field is present but could not be interpreted.
	ClassificationError
)

func (k ErrorKind) String() string {
	switch k {
	case ProbeFailed:
		return "probe failed"
	case NoStreams:
		return "no streams"
	case MissingField:
		return "missing field"
	case ClassificationError:
		return "classification error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for matching AnalysisError kinds with errors.Is.
var (
	ErrProbeFailed    = errors.New("probe failed")
	ErrNoStreams      = errors.New("no streams")
	ErrMissingField   = errors.New("missing field")
	ErrClassification = errors.New("classification error")
)

// ContainerIndex is the StreamIndex of errors concerning container level fields.
const ContainerIndex = -1

// AnalysisError is returned by Analyze for every failure.
type AnalysisError struct {
	Kind ErrorKind
	// Path of the analyzed file.
	Path string
	// StreamIndex is the offending stream position or ContainerIndex. Only meaningful
	// for MissingField and ClassificationError.
	StreamIndex int
	// Field is the canonical name of the offending field.
	Field string
	// Value is the offending raw value (ClassificationError).
	Value string
	// Diagnostic is a human readable description. For ProbeFailed it is the tool's error
	// text verbatim.
	Diagnostic string
	// Err is the underlying error, *probe.Error for ProbeFailed.
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Diagnostic)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e.Kind.
func (e *AnalysisError) Is(target error) bool {
	switch target {
	case ErrProbeFailed:
		return e.Kind == ProbeFailed
	case ErrNoStreams:
		return e.Kind == NoStreams
	case ErrMissingField:
		return e.Kind == MissingField
	case ErrClassification:
		return e.Kind == ClassificationError
	}
	return false
}

// location renders where in the file a field lives.
func location(streamIndex int) string {
	if streamIndex == ContainerIndex {
		return "container"
	}
	return fmt.Sprintf("stream %d", streamIndex)
}
