// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package token

import "github.com/ulikunitz/vpx/rc"

// Indexes of the unconstrained nodes of the token tree.
const (
	EOBNode   = 0
	ZeroNode  = 1
	PivotNode = 2

	// UnconstrainedNodes is the number of nodes with transmitted
	// probabilities.
	UnconstrainedNodes = 3
)

// NodeProbs are the probabilities of the unconstrained nodes for a single
// band and context.
type NodeProbs [UnconstrainedNodes]rc.Prob

// tree is the coefficient token tree. An entry i > 0 points to the pair of
// the node i/2, an entry i <= 0 is the leaf for token -i.
var tree = [2 * (Count - 1)]int8{
	-int8(EOB), 2,
	-int8(Zero), 4,
	-int8(One), 6,
	8, 12,
	-int8(Two), 10,
	-int8(Three), -int8(Four),
	14, 16,
	-int8(Cat1), -int8(Cat2),
	18, 20,
	-int8(Cat3), -int8(Cat4),
	-int8(Cat5), -int8(Cat6),
}

// code is the path of a token through the tree, first bit at the most
// significant position.
type code struct {
	bits uint32
	len  int
}

var codes [Count]code

func init() {
	var walk func(i int, c code)
	walk = func(i int, c code) {
		for b := 0; b < 2; b++ {
			n := int(tree[i+b])
			d := code{bits: c.bits<<1 | uint32(b), len: c.len + 1}
			if n <= 0 {
				codes[-n] = d
				continue
			}
			walk(n, d)
		}
	}
	walk(0, code{})
}

// Pareto returns the probabilities of the constrained nodes for the given
// pivot probability.
func Pareto(pivot rc.Prob) *[8]rc.Prob {
	return &paretoTable[pivot-1]
}

// nodeProb returns the probability of the tree node.
func nodeProb(p *NodeProbs, node int) rc.Prob {
	if node < UnconstrainedNodes {
		return p[node]
	}
	return paretoTable[p[PivotNode]-1][node-UnconstrainedNodes]
}

// BoolWriter is the encoder interface required to write tokens. It is
// implemented by *rc.Encoder.
type BoolWriter interface {
	WriteBool(bit bool, p rc.Prob)
}

// BoolReader is the decoder interface required to read tokens. It is
// implemented by *rc.Decoder.
type BoolReader interface {
	ReadBool(p rc.Prob) bool
}

// Encode writes the token t for the coefficient value v. If skipEOB is set
// the end-of-block decision is omitted; this is required directly after a
// ZERO token and t must not be EOB then. Category tokens are followed by
// their extra bits and all nonzero tokens by the sign of v. The token must
// have been obtained by Classify.
func Encode(w BoolWriter, t Token, v int, p *NodeProbs, skipEOB bool,
	bitDepth int) {
	c := codes[t]
	i := 0
	n := c.len
	if skipEOB {
		if t == EOB {
			panic("token: EOB coded without end-of-block decision")
		}
		n--
		i = 2
	}
	for n > 0 {
		n--
		b := (c.bits >> uint(n)) & 1
		w.WriteBool(b != 0, nodeProb(p, i>>1))
		i = int(tree[i+int(b)])
	}
	if t == Zero || t == EOB {
		return
	}
	if probs := ExtraProbs(t, bitDepth); probs != nil {
		m := v
		if m < 0 {
			m = -m
		}
		extra := m - catBase[t-Cat1]
		for k, q := range probs {
			shift := uint(len(probs) - 1 - k)
			w.WriteBool((extra>>shift)&1 != 0, q)
		}
	}
	w.WriteBool(v < 0, rc.HalfProb)
}

// Decode reads a token and returns it together with the signed coefficient
// value. The value is zero for ZERO and EOB. If skipEOB is set the
// end-of-block decision is not read and EOB cannot be returned.
func Decode(r BoolReader, p *NodeProbs, skipEOB bool, bitDepth int) (t Token, v int) {
	i := 0
	if skipEOB {
		i = 2
	}
	for {
		b := 0
		if r.ReadBool(nodeProb(p, i>>1)) {
			b = 1
		}
		i = int(tree[i+b])
		if i <= 0 {
			break
		}
	}
	t = Token(-i)
	switch {
	case t == Zero || t == EOB:
		return t, 0
	case t <= Four:
		v = int(t)
	default:
		probs := ExtraProbs(t, bitDepth)
		extra := 0
		for _, q := range probs {
			extra <<= 1
			if r.ReadBool(q) {
				extra |= 1
			}
		}
		v = catBase[t-Cat1] + extra
	}
	if r.ReadBool(rc.HalfProb) {
		v = -v
	}
	return t, v
}
