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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// HookFile appends newline-delimited, timestamped log records to a file
// under --test_log_dir. It is the harness's only persisted state besides
// the crash-recovery marker.
type HookFile interface {
	logrus.Hook
	io.WriteCloser
	RegisterHook(log *logrus.Logger)
}

type hookFile struct {
	m sync.Mutex
	h *os.File
}

// NewHookFile opens (creating parent directories as needed) the file at
// path for append and returns a hook that writes every log entry to it.
func NewHookFile(path string) (HookFile, error) {
	if path == "" {
		return nil, fmt.Errorf("logger: empty file hook path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}

	return &hookFile{h: f}, nil
}

func (h *hookFile) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *hookFile) Fire(e *logrus.Entry) error {
	line, err := e.Logger.Formatter.Format(e)
	if err != nil {
		return err
	}

	h.m.Lock()
	defer h.m.Unlock()
	_, err = h.h.Write(line)
	return err
}

func (h *hookFile) Write(p []byte) (int, error) {
	h.m.Lock()
	defer h.m.Unlock()
	return h.h.Write(p)
}

func (h *hookFile) Close() error {
	h.m.Lock()
	defer h.m.Unlock()
	return h.h.Close()
}

func (h *hookFile) RegisterHook(log *logrus.Logger) {
	log.AddHook(h)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02T15:04:05.000000Z07:00",
	})
}
