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

package knot

import "io"

// New returns an empty knot.
func New() *Knot {
	return &Knot{}
}

// FromBytes returns a knot wrapping a single borrowed strand.
func FromBytes(b []byte) *Knot {
	k := &Knot{}
	k.Append(Strand{Bytes: b})
	return k
}

// FromOwned returns a knot wrapping a single owned strand.
func FromOwned(b []byte) *Knot {
	k := &Knot{}
	k.Append(Strand{Bytes: b, Owned: true})
	return k
}

// Append adds a strand to the end of the knot. It never invalidates any
// Iter obtained before the call.
func (k *Knot) Append(s Strand) {
	if len(s.Bytes) == 0 {
		return
	}
	k.cells = append(k.cells, s)
	k.size += len(s.Bytes)
}

// AppendBytes appends a borrowed strand.
func (k *Knot) AppendBytes(b []byte) { k.Append(Strand{Bytes: b}) }

// AppendOwned appends an owned strand.
func (k *Knot) AppendOwned(b []byte) { k.Append(Strand{Bytes: b, Owned: true}) }

// AppendCopy appends a defensive copy of b as an owned strand, for callers
// that cannot guarantee b's backing array outlives the knot.
func (k *Knot) AppendCopy(b []byte) {
	c := make([]byte, len(b))
	copy(c, b)
	k.Append(Strand{Bytes: c, Owned: true})
}

// AppendKnot appends every strand of other to k. Cells are shared by
// reference, not copied.
func (k *Knot) AppendKnot(other *Knot) {
	if other == nil {
		return
	}
	k.cells = append(k.cells, other.cells...)
	k.size += other.size
}

// Size returns the total number of bytes across all strands.
func (k *Knot) Size() int { return k.size }

// Begin returns the iterator at byte offset zero.
func (k *Knot) Begin() Iter {
	if k.size == 0 {
		return Iter{cell: -1}
	}
	return Iter{cell: 0, off: 0}
}

// End returns the sentinel end-of-data iterator.
func (k *Knot) End() Iter { return Iter{cell: -1} }

// IteratorForChar returns the iterator addressing absolute byte offset i,
// or the end iterator if i >= Size().
func (k *Knot) IteratorForChar(i int) Iter {
	if i < 0 || i >= k.size {
		return k.End()
	}

	for c, s := range k.cells {
		if i < len(s.Bytes) {
			return Iter{cell: c, off: i}
		}
		i -= len(s.Bytes)
	}

	return k.End()
}

// next advances it by one byte; returns the end iterator once exhausted.
func (k *Knot) next(it Iter) Iter {
	if it.cell < 0 {
		return it
	}

	it.off++
	for it.cell < len(k.cells) && it.off >= len(k.cells[it.cell].Bytes) {
		it.cell++
		it.off = 0
	}

	if it.cell >= len(k.cells) {
		return k.End()
	}

	return it
}

// byteAt returns the byte addressed by it; panics if it is the end iterator.
func (k *Knot) byteAt(it Iter) byte {
	return k.cells[it.cell].Bytes[it.off]
}

// Find scans forward from start (inclusive) for the first occurrence of b,
// returning its iterator and true, or the end iterator and false.
func (k *Knot) Find(b byte, start Iter) (Iter, bool) {
	for it := start; !it.End(); it = k.next(it) {
		if k.byteAt(it) == b {
			return it, true
		}
	}
	return k.End(), false
}

// Equal reports whether k's bytes are exactly b.
func (k *Knot) Equal(b []byte) bool {
	if k.size != len(b) {
		return false
	}
	return k.StartsWith(b)
}

// StartsWith reports whether k begins with b. A probe longer than the
// knot always returns false.
func (k *Knot) StartsWith(b []byte) bool {
	if len(b) > k.size {
		return false
	}

	n := 0
	for _, s := range k.cells {
		for _, c := range s.Bytes {
			if n >= len(b) {
				return true
			}
			if c != b[n] {
				return false
			}
			n++
		}
	}

	return n >= len(b)
}

// Bytes materializes the knot into one contiguous slice. Intended for
// tests and small bodies (e.g. a COMMAND's first line); large RESULTS
// bodies should be streamed via WriteToFileDescriptor instead.
func (k *Knot) Bytes() []byte {
	b := make([]byte, 0, k.size)
	for _, s := range k.cells {
		b = append(b, s.Bytes...)
	}
	return b
}

// SubKnot returns a new knot covering [begin, end) of k's bytes. Cells that
// fall entirely inside the range are shared by reference; partial cells at
// the boundary are re-sliced, so they share k's storage too.
func (k *Knot) SubKnot(begin, end Iter) *Knot {
	r := &Knot{}

	if begin.End() {
		return r
	}

	endCell, endOff := end.cell, end.off
	if end.End() {
		endCell = len(k.cells)
		endOff = 0
	}

	for c := begin.cell; c <= endCell && c < len(k.cells); c++ {
		s := k.cells[c].Bytes

		lo := 0
		if c == begin.cell {
			lo = begin.off
		}

		hi := len(s)
		if c == endCell {
			hi = endOff
		}

		if lo >= hi {
			continue
		}

		r.Append(Strand{Bytes: s[lo:hi], Owned: false})
	}

	return r
}

// Split divides k at it: it returns the left portion [0, it) as a new
// knot, and k itself is mutated in place to become the right portion
// [it, end). Existing iterators into k obtained before Split remain valid
// against the original byte positions only up to the split point; this
// mirrors the source's "self becomes right" contract.
func (k *Knot) Split(it Iter) *Knot {
	left := k.SubKnot(k.Begin(), it)
	right := k.SubKnot(it, k.End())

	k.cells = right.cells
	k.size = right.size

	return left
}

// LeftErase discards every byte of k strictly before it, keeping [it, end).
func (k *Knot) LeftErase(it Iter) {
	right := k.SubKnot(it, k.End())
	k.cells = right.cells
	k.size = right.size
}

// WriteToFileDescriptor writes k's bytes from start through the end to w,
// returning the iterator just past the last byte written. A partial write
// (w.Write returning n < requested with no error, or a transient error) is
// reported by returning the iterator at the point writing stopped along
// with the error, so the caller can retry from there.
func (k *Knot) WriteToFileDescriptor(w Writer, start Iter) (Iter, error) {
	if start.End() {
		return k.End(), nil
	}

	for c := start.cell; c >= 0 && c < len(k.cells); c++ {
		s := k.cells[c].Bytes

		lo := 0
		if c == start.cell {
			lo = start.off
		}

		if lo >= len(s) {
			continue
		}

		n, err := w.Write(s[lo:])
		if err == nil && n < len(s)-lo {
			err = io.ErrShortWrite
		}
		if err != nil {
			return Iter{cell: c, off: lo + n}, err
		}
	}

	return k.End(), nil
}
