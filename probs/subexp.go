// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package probs

import "github.com/ulikunitz/vpx/rc"

// Reader is the decoder interface used by the update protocol. It is
// implemented by *rc.Decoder.
type Reader interface {
	ReadBool(p rc.Prob) bool
	ReadLiteral(n int) uint32
}

// Writer is the encoder interface used by the update protocol. It is
// implemented by *rc.Encoder.
type Writer interface {
	WriteBool(bit bool, p rc.Prob)
	WriteLiteral(v uint32, n int)
}

// invMapTable maps coded deltas to recentered differences. The first
// twenty entries are the differences 7+13k, the remaining entries list the
// other differences in ascending order. The last entry is a duplicate.
var invMapTable [255]uint8

// mapTable is the inverse of invMapTable, indexed by difference-1.
var mapTable [254]uint8

func init() {
	n := 0
	var used [256]bool
	for v := 7; v < 255; v += 13 {
		invMapTable[n] = uint8(v)
		used[v] = true
		n++
	}
	for v := 1; v < 254; v++ {
		if !used[v] {
			invMapTable[n] = uint8(v)
			n++
		}
	}
	invMapTable[n] = 253
	for i, v := range invMapTable[:len(mapTable)] {
		mapTable[v-1] = uint8(i)
	}
}

func recenterNonneg(v, m int) int {
	switch {
	case v > m<<1:
		return v
	case v >= m:
		return (v - m) << 1
	}
	return (m-v)<<1 - 1
}

func invRecenterNonneg(v, m int) int {
	if v > 2*m {
		return v
	}
	if v&1 != 0 {
		return m - (v+1)>>1
	}
	return m + v>>1
}

// remapProb returns the delta coding the change from oldp to newp. The two
// probabilities must differ.
func remapProb(newp, oldp rc.Prob) int {
	v, m := int(newp)-1, int(oldp)-1
	var i int
	if m<<1 <= 255 {
		i = recenterNonneg(v, m) - 1
	} else {
		i = recenterNonneg(254-v, 254-m) - 1
	}
	return int(mapTable[i])
}

// invRemapProb applies the delta d to the probability m.
func invRemapProb(d int, m rc.Prob) rc.Prob {
	v := int(invMapTable[d])
	k := int(m) - 1
	if k<<1 <= 255 {
		return rc.Prob(1 + invRecenterNonneg(v, k))
	}
	return rc.Prob(255 - invRecenterNonneg(v, 254-k))
}

// uniformLimit is the number of values of the uniform code using seven
// bits; larger values use eight.
const uniformLimit = 65

func readUniform(r Reader) int {
	v := int(r.ReadLiteral(7))
	if v < uniformLimit {
		return v
	}
	return v<<1 - uniformLimit + int(r.ReadLiteral(1))
}

func writeUniform(w Writer, v int) {
	if v < uniformLimit {
		w.WriteLiteral(uint32(v), 7)
		return
	}
	w.WriteLiteral(uint32(uniformLimit+(v-uniformLimit)>>1), 7)
	w.WriteLiteral(uint32((v-uniformLimit)&1), 1)
}

// readTermSubexp reads a delta in the range [0,254] coded by buckets of
// 16, 16, 32 and 191 values.
func readTermSubexp(r Reader) int {
	if r.ReadLiteral(1) == 0 {
		return int(r.ReadLiteral(4))
	}
	if r.ReadLiteral(1) == 0 {
		return int(r.ReadLiteral(4)) + 16
	}
	if r.ReadLiteral(1) == 0 {
		return int(r.ReadLiteral(5)) + 32
	}
	return readUniform(r) + 64
}

func writeTermSubexp(w Writer, d int) {
	bucket := func(limit int) bool {
		ge := d >= limit
		var b uint32
		if ge {
			b = 1
		}
		w.WriteLiteral(b, 1)
		return ge
	}
	switch {
	case !bucket(16):
		w.WriteLiteral(uint32(d), 4)
	case !bucket(32):
		w.WriteLiteral(uint32(d-16), 4)
	case !bucket(64):
		w.WriteLiteral(uint32(d-32), 5)
	default:
		writeUniform(w, d-64)
	}
}

// termSubexpBits returns the length of the code for delta d.
func termSubexpBits(d int) int {
	switch {
	case d < 16:
		return 5
	case d < 32:
		return 6
	case d < 64:
		return 8
	case d-64 < uniformLimit:
		return 10
	}
	return 11
}
