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

// Package knot implements an immutable-append byte rope. A Knot is built
// from zero-copy Strands; appends never touch existing cells, so an Iter
// handed out before an Append stays valid after it. Mutating operations
// (Split, LeftErase) copy only the cell list, never strand storage, so
// sub-knots taken before a mutation keep seeing their original bytes.
package knot

import "io"

// Strand is one contiguous byte buffer contributing to a Knot. Owned
// strands were handed to the Knot for it to keep; Borrowed strands are
// only valid for as long as the caller guarantees the backing array is not
// reused — callers that cannot make that guarantee should use AppendCopy.
type Strand struct {
	Bytes []byte
	Owned bool
}

// Iter addresses a byte position inside a Knot: the index of the strand
// cell and the offset within it. Iterators are stable across Append
// because Append only ever grows the cell slice.
type Iter struct {
	cell int
	off  int
}

// End reports whether the iterator is the knot's own end-of-data position.
func (i Iter) End() bool { return i.cell < 0 }

// Knot is an ordered sequence of strands forming one logical byte string.
type Knot struct {
	cells []Strand
	size  int
}

// Writer is the subset of io.Writer a Knot needs to flush itself to a
// descriptor; satisfied by *os.File, net.Conn, and bytes.Buffer alike.
type Writer interface {
	io.Writer
}
