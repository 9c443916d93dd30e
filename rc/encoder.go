// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import "github.com/ulikunitz/vpx/internal/xlog"

// Encoder writes boolean values into a byte slice. Carries are propagated
// into bytes already written, so the output can only be used after Finish
// has been called.
type Encoder struct {
	buf    []byte
	low    uint32
	nrange uint32
	// count is the number of bits in low that are ready for output minus
	// eight.
	count int
	// for debugging
	bitCounter int
}

// NewEncoder creates an encoder that appends its output to buf[:0]. The
// marker bit is written immediately.
func NewEncoder(buf []byte) *Encoder {
	e := new(Encoder)
	e.Reset(buf)
	return e
}

// Reset starts a new stream reusing the capacity of buf.
func (e *Encoder) Reset(buf []byte) {
	*e = Encoder{
		buf:    buf[:0],
		nrange: 255,
		count:  -24,
	}
	e.WriteBit(false)
}

// WriteBool encodes bit using p as the probability of the bit being false.
func (e *Encoder) WriteBool(bit bool, p Prob) {
	split := 1 + (((e.nrange - 1) * uint32(p)) >> 8)
	nrange := split
	low := e.low
	if bit {
		low += split
		nrange = e.nrange - split
	}

	shift := norm(nrange)
	nrange <<= uint(shift)
	count := e.count + shift
	if count >= 0 {
		offset := shift - count
		if (low<<uint(offset-1))&0x80000000 != 0 {
			e.carry()
		}
		e.buf = append(e.buf, byte(low>>uint(24-offset)))
		low <<= uint(offset)
		shift = count
		low &= 0xffffff
		count -= 8
	}
	low <<= uint(shift)

	e.count = count
	e.low = low
	e.nrange = nrange

	if debug != nil {
		e.bitCounter++
		xlog.Printf(debug, "W %5d 0x%02x %3d %t", e.bitCounter,
			e.nrange, p, bit)
	}
}

// carry adds one to the bytes already written. Trailing 0xff bytes wrap to
// zero. The marker bit guarantees that the carry never runs past the first
// byte.
func (e *Encoder) carry() {
	x := len(e.buf) - 1
	for x >= 0 && e.buf[x] == 0xff {
		e.buf[x] = 0
		x--
	}
	e.buf[x]++
}

// WriteBit writes a bit with probability one half.
func (e *Encoder) WriteBit(bit bool) {
	e.WriteBool(bit, HalfProb)
}

// WriteLiteral writes the n least significant bits of v, most significant
// bit first, each with probability one half.
func (e *Encoder) WriteLiteral(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		e.WriteBit((v>>uint(i))&1 != 0)
	}
}

// Finish terminates the stream and returns its length in bytes. The
// encoder must not be used afterwards except for Bytes and Reset.
func (e *Encoder) Finish() int {
	for i := 0; i < 32; i++ {
		e.WriteBit(false)
	}
	// A last byte of the form 110xxxxx could be mistaken for a superframe
	// index marker.
	if n := len(e.buf); n > 0 && e.buf[n-1]&0xe0 == 0xc0 {
		e.buf = append(e.buf, 0)
	}
	return len(e.buf)
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }
