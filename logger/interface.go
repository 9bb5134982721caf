/*
 * MIT License
 *
 * Copyright (c) 2021 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger is the harness's structured logging facade: a logrus-backed
// Logger with level filtering, default fields, and pluggable hooks (file,
// standard stream). NewPeriodicTimestamp takes a FuncLog rather than a
// concrete Logger, so the Logger behind it can be rebuilt (e.g. on SIGHUP)
// without it knowing; the protocol and harness-net layers take a fatal
// callback instead of a logger.
package logger

import (
	"io"

	logfld "github.com/anvil-labs/harness/logger/fields"
	loglvl "github.com/anvil-labs/harness/logger/level"
)

// FuncLog returns the current Logger. Components store this instead of a
// Logger value so a config reload can swap the implementation underneath.
type FuncLog func() Logger

// Logger is the logging surface used throughout the harness. It doubles as
// an io.Writer so it can sit behind a log.Logger or be handed to a library
// that wants a plain writer (e.g. jwalterweatherman, see SetSPF13Level).
type Logger interface {
	io.WriteCloser

	SetLevel(lvl loglvl.Level)
	GetLevel() loglvl.Level

	SetFields(f logfld.Fields)
	GetFields() logfld.Fields

	AddHookFile(h HookFile)
	AddHookStandard(h HookStandard)

	Debug(message string, args ...interface{})
	Info(message string, args ...interface{})
	Warning(message string, args ...interface{})
	Error(message string, args ...interface{})

	// Fatal logs at FatalLevel then calls os.Exit(1). Every fatal
	// condition in the event loop, dispatcher, or harness net stack
	// routes through here so the last line in any log is always FATAL.
	Fatal(message string, args ...interface{})

	// Clone returns a logger sharing the same hooks but with an
	// independent level and field set.
	Clone() Logger
}
