/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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
 */

// Package fileDescriptor raises the process's open-file limit at startup, so
// a master-harness fanning out to dozens of slave connections (plus their log
// and wire-debug hooks) doesn't run into EMFILE under ordinary load. The
// harness deploys as a Unix TCP server; this wraps syscall.Getrlimit/Setrlimit
// on RLIMIT_NOFILE directly rather than carrying a Windows code path.
package fileDescriptor

import (
	"math"
	"syscall"
)

// RaiseOpenFileLimit returns the process's current and hard open-file
// limits, optionally first attempting to raise the soft limit to newValue.
//
//   - newValue <= 0, or already <= the current soft limit: query only, no
//     change attempted.
//   - newValue above the current soft limit: attempts Setrlimit, raising the
//     hard limit too if needed (typically requires elevated privileges).
//     Never lowers an existing limit.
func RaiseOpenFileLimit(newValue int) (current int, max int, err error) {
	var rLimit syscall.Rlimit
	if err = syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, 0, err
	}

	if newValue <= 0 || uint64(newValue) <= rLimit.Cur {
		current, max = clampRlimit(rLimit.Cur, rLimit.Max)
		return current, max, nil
	}

	if uint64(newValue) > rLimit.Max {
		rLimit.Max = uint64(newValue)
	}
	rLimit.Cur = uint64(newValue)

	if err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, 0, err
	}

	if err = syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, 0, err
	}
	current, max = clampRlimit(rLimit.Cur, rLimit.Max)
	return current, max, nil
}

func clampRlimit(cur, max uint64) (int, int) {
	return clampUint64(cur), clampUint64(max)
}

func clampUint64(v uint64) int {
	if v > uint64(math.MaxInt) {
		return math.MaxInt
	}
	return int(v)
}
