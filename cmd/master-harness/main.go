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

// Command master-harness is the master side of the distributed test-harness
// topology (spec §4.9): it listens for a slave, sends it the configured test
// script via RUNSCRIPT, and shuts down once the slave acknowledges the
// command. The script's later completion event is not awaited.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anvil-labs/harness/config"
	"github.com/anvil-labs/harness/harnessnet"
	"github.com/anvil-labs/harness/ioutils/fileDescriptor"
	"github.com/anvil-labs/harness/ioutils/mapCloser"
	"github.com/anvil-labs/harness/knot"
	"github.com/anvil-labs/harness/logger"
)

func main() {
	cfg := config.New()

	cmd := &cobra.Command{
		Use:           "master-harness",
		Short:         "master side of the distributed test-harness topology",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	cfg.BindFlags(cmd)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Harness) error {
	if err := cfg.LoadFile(cfg.ConfigFile()); err != nil {
		return fmt.Errorf("master-harness: %w", err)
	}
	if err := cfg.ResolveDurations(); err != nil {
		return fmt.Errorf("master-harness: %w", err)
	}

	// resources collects every file-backed handle opened below (log hooks,
	// the wire-debug hook) so a single Close aggregates their shutdown
	// instead of leaking them on exit.
	resources := mapCloser.New(context.Background())
	defer func() { _ = resources.Close() }()

	if cfg.MaxOpenFiles > 0 {
		if cur, max, err := fileDescriptor.RaiseOpenFileLimit(cfg.MaxOpenFiles); err != nil {
			fmt.Fprintf(os.Stderr, "master-harness: raise open-file limit: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "master-harness: open-file limit: current=%d max=%d\n", cur, max)
		}
	}

	log := logger.New()
	log.SetLevel(cfg.LogLevel())
	log.AddHookStandard(logger.NewHookStandard(logger.StdErr, cfg.LogLevel().Logrus()))
	if cfg.TestLogDir != "" {
		hook, err := logger.NewHookFile(filepath.Join(cfg.TestLogDir, "master-harness.log"))
		if err != nil {
			return fmt.Errorf("master-harness: %w", err)
		}
		log.AddHookFile(hook)
		resources.Add(hook)
	}
	logger.SetSPF13Level(log, cfg.LogLevel())

	if cfg.TimestampPeriod.Time() > 0 {
		ticker := logger.NewPeriodicTimestamp(cfg.TimestampPeriod, func() logger.Logger { return log })
		defer ticker.Stop()
	}

	fatal := func(reason string) { log.Fatal(reason) }

	var opts []harnessnet.MasterOption
	if cfg.DebugDir != "" {
		hook, err := logger.NewHookFile(filepath.Join(cfg.DebugDir, "master-harness.wire"))
		if err != nil {
			return fmt.Errorf("master-harness: %w", err)
		}
		opts = append(opts, harnessnet.WithDebugWriter(hook))
		resources.Add(hook)
	}

	master := harnessnet.NewMaster(fatal, cfg.TestLogDir, opts...)
	if err := master.Listen(cfg.ListenAddress()); err != nil {
		return fmt.Errorf("master-harness: %w", err)
	}
	log.Info("listening on %s", cfg.ListenAddress())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)

		master.BlockUntilNumConnections(1)
		log.Info("slave connected")

		if cfg.TestScript == "" {
			return
		}

		ids := master.ConnectedIDs()
		if len(ids) == 0 {
			return
		}
		handle, ok := master.GetProtocolStack(ids[0])
		if !ok {
			return
		}

		pc := handle.Sender().SendCommand(knot.FromBytes([]byte("RUNSCRIPT\n" + cfg.TestScript + "\n")))
		pc.Done.Value()
		log.Info("test script %q acknowledged", cfg.TestScript)
	}()

	select {
	case <-sigs:
		log.Warning("received shutdown signal")
	case <-done:
	}

	return master.ExitLoopAndWait()
}
