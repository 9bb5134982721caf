/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package logger

import (
	"io"

	loglvl "github.com/anvil-labs/harness/logger/level"
	jww "github.com/spf13/jwalterweatherman"
)

// SetSPF13Level routes jwalterweatherman's global logger (used internally by
// cobra and viper) through this Logger, so a --verbose flag controls harness
// log lines and the CLI framework's own diagnostics uniformly.
func SetSPF13Level(l Logger, lvl loglvl.Level) {
	if lvl == loglvl.NilLevel {
		jww.SetStdoutOutput(io.Discard)
		jww.SetLogOutput(io.Discard)
		return
	}

	jww.SetStdoutOutput(l)
	jww.SetLogOutput(l)

	switch lvl {
	case loglvl.DebugLevel:
		jww.SetStdoutThreshold(jww.LevelTrace)
	case loglvl.InfoLevel:
		jww.SetStdoutThreshold(jww.LevelInfo)
	case loglvl.WarnLevel:
		jww.SetStdoutThreshold(jww.LevelWarn)
	case loglvl.ErrorLevel:
		jww.SetStdoutThreshold(jww.LevelError)
	case loglvl.FatalLevel, loglvl.PanicLevel:
		jww.SetStdoutThreshold(jww.LevelCritical)
	}
}
