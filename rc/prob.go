// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package rc implements the boolean range coder used by the VP9 format.
//
// Every bit is coded with an 8-bit probability of the bit being zero. The
// encoder starts the stream with a zero marker bit and terminates it with 32
// zero bits, which allows the decoder to prefetch up to eight bytes without
// running past the end of a correctly terminated stream. A decoder that is
// asked for more bits than the stream provides reads zeros and reports
// itself as corrupted.
package rc

import "math/bits"

// Prob is the probability of a zero bit in units of 1/256. Valid
// probabilities are in the range [1,255].
type Prob uint8

// HalfProb is the probability used for literal bits.
const HalfProb Prob = 128

// Valid reports whether p can be used for coding.
func (p Prob) Valid() bool { return p != 0 }

// ClipProb clips v into the range of valid probabilities.
func ClipProb(v int) Prob {
	switch {
	case v > 255:
		return 255
	case v < 1:
		return 1
	}
	return Prob(v)
}

// norm returns the shift required to bring r back into [128,255]. The
// argument must be in the range [1,255].
func norm(r uint32) int {
	return bits.LeadingZeros32(r) - 24
}
