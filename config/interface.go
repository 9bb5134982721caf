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

// Package config exposes the CLI surface shared by the master-harness and
// slave-harness executables (spec §6): --sut_path, --sut_args,
// --listen_addr, --listen_port, --connect_addr, --connect_port,
// --test_script, --test_log_dir, --debug_dir, --verbose,
// --timestamp_period. Flags bind to a single Harness struct with
// spf13/cobra; an optional --config file is layered underneath with
// spf13/viper, following the teacher's config/cptList.go component-registry
// idiom generalized to one fixed struct instead of a dynamic component
// list (the harness has a fixed, small set of components, so the full
// registry the teacher needs for arbitrary pluggable components is not
// warranted here).
package config

import (
	"github.com/spf13/cobra"

	libdur "github.com/anvil-labs/harness/duration"
	loglvl "github.com/anvil-labs/harness/logger/level"
)

// Harness holds every flag value a master-harness or slave-harness
// executable needs, after BindFlags has registered them on a *cobra.Command
// and cobra has parsed argv.
type Harness struct {
	SUTPath string
	SUTArgs []string

	ListenAddr string
	ListenPort int

	ConnectAddr string
	ConnectPort int

	TestScript string
	TestLogDir string
	DebugDir   string

	MaxOpenFiles int

	Verbose int

	timestampPeriodRaw string
	TimestampPeriod    libdur.Duration

	configFile string
}

// New returns a Harness with every field at its zero value; call BindFlags
// before cobra.Command.Execute, then ResolveDurations after Execute returns
// to populate TimestampPeriod from the parsed flag string.
func New() *Harness {
	return &Harness{}
}

// BindFlags registers every harness flag on cmd's flag set, writing parsed
// values directly into h's fields.
func (h *Harness) BindFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVar(&h.SUTPath, "sut_path", "", "path to the SUT executable")
	f.StringSliceVar(&h.SUTArgs, "sut_args", nil, "arguments passed to the SUT executable")

	f.StringVar(&h.ListenAddr, "listen_addr", "", "address to listen on for inbound harness-net connections")
	f.IntVar(&h.ListenPort, "listen_port", 0, "port to listen on for inbound harness-net connections")

	f.StringVar(&h.ConnectAddr, "connect_addr", "", "master address to dial as a slave")
	f.IntVar(&h.ConnectPort, "connect_port", 0, "master port to dial as a slave")

	f.StringVar(&h.TestScript, "test_script", "", "name of the registered test script to run")
	f.StringVar(&h.TestLogDir, "test_log_dir", "", "directory for test-log records and the crash-recovery marker")
	f.StringVar(&h.DebugDir, "debug_dir", "", "directory to tee every raw wire byte for offline debugging")

	f.IntVar(&h.MaxOpenFiles, "max_open_files", 0, "attempt to raise the process open-file limit to this value at startup (0 leaves it unchanged)")

	f.CountVarP(&h.Verbose, "verbose", "v", "enable verbose logging (repeatable: -v, -vv, -vvv)")
	f.StringVar(&h.timestampPeriodRaw, "timestamp_period", "0s", "interval between periodic wall-clock timestamp log lines (0 disables)")

	f.StringVarP(&h.configFile, "config", "c", "", "optional config file (json|toml|yaml) layering flag defaults")
}

// ConfigFile returns the path passed to --config, or "" if unset.
func (h *Harness) ConfigFile() string { return h.configFile }

// ListenAddress returns "host:port" for net.Listen.
func (h *Harness) ListenAddress() string {
	return joinHostPort(h.ListenAddr, h.ListenPort)
}

// ConnectAddress returns "host:port" for net.Dial.
func (h *Harness) ConnectAddress() string {
	return joinHostPort(h.ConnectAddr, h.ConnectPort)
}

// LogLevel maps the repeated --verbose count onto the harness's severity
// scale: unset is Warn, -v is Info, -vv is Debug, -vvv+ is still Debug.
func (h *Harness) LogLevel() loglvl.Level {
	switch {
	case h.Verbose >= 2:
		return loglvl.DebugLevel
	case h.Verbose == 1:
		return loglvl.InfoLevel
	default:
		return loglvl.WarnLevel
	}
}

// ResolveDurations parses timestampPeriodRaw (set by BindFlags, populated by
// cobra after Execute) into TimestampPeriod. Call once after the command
// that owns these flags has parsed argv.
func (h *Harness) ResolveDurations() error {
	d, err := libdur.Parse(h.timestampPeriodRaw)
	if err != nil {
		return err
	}
	h.TimestampPeriod = d
	return nil
}
