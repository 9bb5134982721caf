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

package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// StdWriter selects which standard stream HookStandard writes to.
type StdWriter uint8

const (
	StdOut StdWriter = iota
	StdErr
)

// HookStandard mirrors log entries to the console, gated by --verbose.
type HookStandard interface {
	logrus.Hook
	io.WriteCloser
	RegisterHook(log *logrus.Logger)
}

type hookStd struct {
	w io.Writer
	l []logrus.Level
}

// NewHookStandard returns a hook writing entries at or above min to the
// selected stream.
func NewHookStandard(dst StdWriter, min logrus.Level) HookStandard {
	var w io.Writer = os.Stdout
	if dst == StdErr {
		w = os.Stderr
	}

	lv := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= min {
			lv = append(lv, l)
		}
	}

	return &hookStd{w: w, l: lv}
}

func (h *hookStd) Levels() []logrus.Level {
	return h.l
}

func (h *hookStd) Fire(e *logrus.Entry) error {
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

func (h *hookStd) Write(p []byte) (int, error) {
	return h.w.Write(p)
}

func (h *hookStd) Close() error {
	return nil
}

func (h *hookStd) RegisterHook(log *logrus.Logger) {
	log.AddHook(h)
}
