// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package token provides the alphabet of coefficient tokens and the coding
// of a single token with the range coder.
//
// A token describes the magnitude class of a quantized transform
// coefficient. The classes ZERO to FOUR are exact magnitudes, the categories
// CAT1 to CAT6 cover magnitude ranges and are followed by extra bits coded
// with fixed probabilities. Nonzero tokens are followed by a sign bit.
//
// The tokens are coded with a binary tree. The first three nodes (end of
// block, zero, one) use adapted probabilities; the probabilities of the
// remaining eight nodes are taken from a fixed Pareto table row selected by
// the probability of the third node, the pivot.
package token

import (
	"errors"
	"fmt"
)

// Token is an element of the coefficient alphabet.
type Token uint8

// The values are part of the format; they are used as tree leaves.
const (
	Zero Token = iota
	One
	Two
	Three
	Four
	Cat1
	Cat2
	Cat3
	Cat4
	Cat5
	Cat6
	EOB

	// Count is the number of tokens.
	Count = 12
)

var tokenNames = [Count]string{
	"ZERO", "ONE", "TWO", "THREE", "FOUR",
	"CAT1", "CAT2", "CAT3", "CAT4", "CAT5", "CAT6", "EOB",
}

// String returns the name of the token.
func (t Token) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("Token(%d)", uint8(t))
}

// energyClass buckets tokens for the computation of coefficient contexts.
var energyClass = [Count]uint8{0, 1, 2, 3, 3, 4, 4, 5, 5, 5, 5, 5}

// EnergyClass returns the energy class of the token in the range [0,5].
func (t Token) EnergyClass() uint8 { return energyClass[t] }

// Model token indexes used for counting. Tokens larger than one are all
// counted as Two.
const (
	ModelZero = 0
	ModelOne  = 1
	ModelTwo  = 2
	ModelEOB  = 3

	// ModelTokens is the number of model tokens.
	ModelTokens = 4
)

// Model returns the model token index of t.
func (t Token) Model() int {
	switch {
	case t == EOB:
		return ModelEOB
	case t >= Two:
		return ModelTwo
	}
	return int(t)
}

// ErrMagnitude indicates that a coefficient magnitude cannot be represented
// by any token at the given bit depth.
var ErrMagnitude = errors.New("token: magnitude out of range")

// ValidBitDepth reports whether bitDepth is supported.
func ValidBitDepth(bitDepth int) bool {
	switch bitDepth {
	case 8, 10, 12:
		return true
	}
	return false
}

// MaxMagnitude returns the largest magnitude that can be coded at the given
// bit depth.
func MaxMagnitude(bitDepth int) int {
	return catBase[Cat6-Cat1] + 1<<uint(cat6Bits(bitDepth)) - 1
}

// Classify returns the token for the coefficient value v together with the
// extra value coded after a category token.
func Classify(v int, bitDepth int) (t Token, extra int, err error) {
	m := v
	if m < 0 {
		m = -m
	}
	if m <= int(Four) {
		return Token(m), 0, nil
	}
	if m > MaxMagnitude(bitDepth) {
		return 0, 0, fmt.Errorf("%w: %d at bit depth %d",
			ErrMagnitude, v, bitDepth)
	}
	for c := len(catBase) - 1; ; c-- {
		if m >= catBase[c] {
			return Cat1 + Token(c), m - catBase[c], nil
		}
	}
}
