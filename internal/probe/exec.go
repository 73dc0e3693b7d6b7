// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/evolution-gaming/mediaanalyzer/internal/logging"
	"github.com/evolution-gaming/mediaanalyzer/internal/lw"
	"github.com/google/shlex"
)

const (
	stdoutLimit = 32 * 1024 * 1024 // 32 MiB of JSON is far beyond any sane report
	stderrLimit = 64 * 1024
	// How long to wait for output pipes after the process was killed.
	waitDelay = 2 * time.Second
)

// splitArgs splits a command line fragment the way a POSIX shell would.
func splitArgs(args string) ([]string, error) {
	a, err := shlex.Split(args)
	if err != nil {
		return nil, fmt.Errorf("splitting arguments %q: %w", args, err)
	}
	return a, nil
}

// runTool executes exePath with args followed by path and captures its output.
//
// Context cancellation and output overflow are reported as *Error. Any other run
// failure (non-zero exit, exec failure) is returned as is along with captured output so
// that callers can extract a tool-specific diagnostic.
func runTool(ctx context.Context, tool, exePath string, args []string, path string) ([]byte, string, error) {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, args...)
	argv = append(argv, path)

	stdout := lw.NewBuffer(stdoutLimit)
	stderr := lw.NewBuffer(stderrLimit)

	cmd := exec.CommandContext(ctx, exePath, argv...) //#nosec G204
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	logging.Logger().Debug().Str("tool", tool).Strs("args", cmd.Args).Msg("running probe")
	start := time.Now()
	err := cmd.Run()
	logging.Logger().Debug().Str("tool", tool).Dur("elapsed", time.Since(start)).Err(err).Msg("probe finished")

	if ctxErr := ctx.Err(); ctxErr != nil {
		diag := tool + " canceled"
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			diag = tool + " timed out"
		}
		return nil, "", &Error{Tool: tool, Path: path, Diagnostic: diag, Err: ctxErr}
	}

	if stdout.Overflowed() {
		return nil, "", &Error{
			Tool:       tool,
			Path:       path,
			Diagnostic: fmt.Sprintf("output exceeds %d bytes", stdout.Limit()),
		}
	}

	return stdout.Bytes(), strings.TrimSpace(stderr.String()), err
}

// failure builds *Error for a failed run, preferring stderr over the exec error text.
func failure(tool, path, stderr string, err error) *Error {
	diag := lastLine(stderr)
	if diag == "" {
		diag = err.Error()
	}
	return &Error{Tool: tool, Path: path, Diagnostic: diag, Err: err}
}

// lastLine returns the last non-empty line of s, tools tend to print the actual error last.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
