// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import (
	"errors"

	"github.com/ulikunitz/vpx/internal/xlog"
)

const (
	// valueSize is the size of the decoder window in bits.
	valueSize = 64
	// lotsOfBits is added to the bit count once the input is exhausted.
	// The decoder can then continue without refilling for a long time
	// while reading zeros.
	lotsOfBits = 0x4000
)

// Decoder reads boolean values from a byte slice.
type Decoder struct {
	buf []byte
	pos int
	// value holds the current bits of the stream with the most significant
	// byte being the one compared against the split.
	value  uint64
	count  int
	nrange uint32
	// padded counts how often zero padding was appended.
	padded int
	// for debugging
	bitCounter int
}

// ErrMarker indicates that the first bit of a stream was not zero.
var ErrMarker = errors.New("rc: invalid marker bit")

// NewDecoder creates a decoder for buf and reads the marker bit.
func NewDecoder(buf []byte) (d *Decoder, err error) {
	d = new(Decoder)
	if err = d.Init(buf); err != nil {
		return nil, err
	}
	return d, nil
}

// Init initializes the decoder for a new stream. The decoder can be used
// even if an error is returned; it will then be reported as corrupted.
func (d *Decoder) Init(buf []byte) error {
	*d = Decoder{
		buf:    buf,
		count:  -8,
		nrange: 255,
	}
	d.fill()
	if d.ReadBit() {
		d.padded = 2
		return ErrMarker
	}
	return nil
}

// fill loads bytes into the window until less than eight bits are free. If
// the input is exhausted the count is increased by lotsOfBits and zeros are
// shifted in from then on.
func (d *Decoder) fill() {
	shift := valueSize - 8 - (d.count + 8)
	bitsLeft := (len(d.buf) - d.pos) * 8
	bitsOver := shift + 8 - bitsLeft
	loopEnd := 0
	if bitsOver >= 0 {
		d.count += lotsOfBits
		d.padded++
		loopEnd = bitsOver
	}
	if bitsOver < 0 || bitsLeft > 0 {
		for shift >= loopEnd {
			d.count += 8
			d.value |= uint64(d.buf[d.pos]) << uint(shift)
			d.pos++
			shift -= 8
		}
	}
}

// ReadBool decodes a bit that has been encoded with probability p of being
// false.
func (d *Decoder) ReadBool(p Prob) bool {
	split := (d.nrange*uint32(p) + (256 - uint32(p))) >> 8
	if d.count < 0 {
		d.fill()
	}

	value := d.value
	bigsplit := uint64(split) << (valueSize - 8)
	nrange := split
	bit := false
	if value >= bigsplit {
		nrange = d.nrange - split
		value -= bigsplit
		bit = true
	}

	shift := norm(nrange)
	d.nrange = nrange << uint(shift)
	d.value = value << uint(shift)
	d.count -= shift

	if debug != nil {
		d.bitCounter++
		xlog.Printf(debug, "R %5d 0x%02x %3d %t", d.bitCounter,
			d.nrange, p, bit)
	}
	return bit
}

// ReadBit reads a bit with probability one half.
func (d *Decoder) ReadBit() bool {
	return d.ReadBool(HalfProb)
}

// ReadLiteral reads an n-bit unsigned value, most significant bit first.
func (d *Decoder) ReadLiteral(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v <<= 1
		if d.ReadBit() {
			v |= 1
		}
	}
	return v
}

// Corrupted reports whether the decoder has consumed bits beyond the end of
// its input. The values returned after that point are zeros and not part of
// the encoded stream.
func (d *Decoder) Corrupted() bool {
	return d.padded > 1 || (d.padded == 1 && d.count < lotsOfBits)
}
