// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Two-level (Info and Debug) logging facade on top of zerolog. Nothing is logged until a
// level is explicitly enabled via Enable*Logger().
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu            sync.Mutex
	defaultOutput io.Writer = os.Stderr
	infoEnabled   bool
	debugEnabled  bool
	current       atomic.Pointer[zerolog.Logger]
)

func init() {
	rebuild()
}

// rebuild swaps the active logger according to output and enabled levels. Callers must
// hold mu, except for init.
func rebuild() {
	level := zerolog.Disabled
	if infoEnabled {
		level = zerolog.InfoLevel
	}
	if debugEnabled {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: defaultOutput, NoColor: true, TimeFormat: time.DateTime}
	l := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
	current.Store(&l)
}

// SetOutput redirects log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	defaultOutput = w
	rebuild()
}

// EnableInfoLogger helper function to explicitly enable Info level.
func EnableInfoLogger() {
	mu.Lock()
	defer mu.Unlock()
	infoEnabled = true
	rebuild()
}

// EnableDebugLogger helper function to explicitly enable Debug level. Debug level implies
// Info level.
func EnableDebugLogger() {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = true
	rebuild()
}

// Logger returns the active logger for structured logging.
func Logger() *zerolog.Logger {
	return current.Load()
}

func Info(v ...interface{}) {
	Logger().Info().CallerSkipFrame(1).Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	Logger().Info().CallerSkipFrame(1).Msgf(format, v...)
}

func Debug(v ...interface{}) {
	Logger().Debug().CallerSkipFrame(1).Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) {
	Logger().Debug().CallerSkipFrame(1).Msgf(format, v...)
}
