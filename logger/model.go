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
	"os"
	"sync"

	logfld "github.com/anvil-labs/harness/logger/fields"
	loglvl "github.com/anvil-labs/harness/logger/level"
	"github.com/sirupsen/logrus"
)

type lgr struct {
	m sync.RWMutex
	r *logrus.Logger
	l loglvl.Level
	f logfld.Fields
}

// New returns a Logger writing to os.Stderr at InfoLevel with no default
// fields and no extra hooks until AddHookFile / AddHookStandard are called.
func New() Logger {
	r := logrus.New()
	r.SetOutput(os.Stderr)
	r.SetLevel(loglvl.InfoLevel.Logrus())

	return &lgr{
		r: r,
		l: loglvl.InfoLevel,
		f: logfld.New(),
	}
}

func (o *lgr) Write(p []byte) (n int, err error) {
	o.m.RLock()
	defer o.m.RUnlock()
	return o.r.Writer().Write(p)
}

func (o *lgr) Close() error {
	return nil
}

func (o *lgr) SetLevel(lvl loglvl.Level) {
	o.m.Lock()
	defer o.m.Unlock()
	o.l = lvl
	o.r.SetLevel(lvl.Logrus())
}

func (o *lgr) GetLevel() loglvl.Level {
	o.m.RLock()
	defer o.m.RUnlock()
	return o.l
}

func (o *lgr) SetFields(f logfld.Fields) {
	o.m.Lock()
	defer o.m.Unlock()
	o.f = f
}

func (o *lgr) GetFields() logfld.Fields {
	o.m.RLock()
	defer o.m.RUnlock()
	return o.f.Clone()
}

func (o *lgr) AddHookFile(h HookFile) {
	o.m.Lock()
	defer o.m.Unlock()
	h.RegisterHook(o.r)
}

func (o *lgr) AddHookStandard(h HookStandard) {
	o.m.Lock()
	defer o.m.Unlock()
	h.RegisterHook(o.r)
}

func (o *lgr) entry() *logrus.Entry {
	o.m.RLock()
	defer o.m.RUnlock()
	return o.r.WithFields(o.f.Logrus())
}

func (o *lgr) Debug(message string, args ...interface{}) {
	o.entry().Debugf(message, args...)
}

func (o *lgr) Info(message string, args ...interface{}) {
	o.entry().Infof(message, args...)
}

func (o *lgr) Warning(message string, args ...interface{}) {
	o.entry().Warnf(message, args...)
}

func (o *lgr) Error(message string, args ...interface{}) {
	o.entry().Errorf(message, args...)
}

func (o *lgr) Fatal(message string, args ...interface{}) {
	e := o.entry()
	e.Logf(loglvl.FatalLevel.Logrus(), message, args...)
	e.Log(loglvl.FatalLevel.Logrus(), "FATAL")
	os.Exit(1)
}

func (o *lgr) Clone() Logger {
	o.m.RLock()
	defer o.m.RUnlock()

	hooks := make(logrus.LevelHooks, len(o.r.Hooks))
	for lvl, hs := range o.r.Hooks {
		hooks[lvl] = append([]logrus.Hook(nil), hs...)
	}

	r := logrus.New()
	r.SetOutput(o.r.Out)
	r.SetFormatter(o.r.Formatter)
	r.ReplaceHooks(hooks)
	r.SetLevel(o.l.Logrus())

	return &lgr{
		r: r,
		l: o.l,
		f: o.f.Clone(),
	}
}
