// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import "fmt"

// Error is returned when a probing tool could not run, exited with failure or produced
// output that could not be used.
type Error struct {
	// Tool name, e.g. "ffprobe".
	Tool string
	// Path of the probed file.
	Path string
	// Diagnostic is the tool's own error text, kept verbatim.
	Diagnostic string
	// Underlying error if any (exec error, context error, JSON error).
	Err error
}

// Error implements error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s failed for %s: %s", e.Tool, e.Path, e.Diagnostic)
}

func (e *Error) Unwrap() error {
	return e.Err
}
