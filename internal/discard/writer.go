// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package discard provides a bit sink for the entropy coders. It discards
// the coded bits and only accumulates their cost, which supports dry runs
// of the encoder that collect token statistics without producing a stream.
package discard

import "github.com/ulikunitz/vpx/rc"

// Writer discards bits. It implements the writer interfaces of the token
// and probs packages.
type Writer struct {
	cost int64
	bits int64
}

// WriteBool adds the cost of coding bit with probability p.
func (w *Writer) WriteBool(bit bool, p rc.Prob) {
	w.cost += int64(rc.Cost(bit, p))
	w.bits++
}

// WriteLiteral adds the cost of n bits coded with probability one half.
func (w *Writer) WriteLiteral(v uint32, n int) {
	w.cost += int64(n) << rc.CostShift
	w.bits += int64(n)
}

// Cost returns the accumulated cost in units of 1/(1<<rc.CostShift) bit.
func (w *Writer) Cost() int64 { return w.cost }

// Bytes returns the estimated size of the discarded stream in bytes.
func (w *Writer) Bytes() int64 {
	const unit = 8 << rc.CostShift
	return (w.cost + unit - 1) / unit
}

// Decisions returns the number of binary decisions written.
func (w *Writer) Decisions() int64 { return w.bits }

// Reset sets the writer back to its initial state.
func (w *Writer) Reset() { *w = Writer{} }
