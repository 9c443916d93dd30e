// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package token

import "github.com/ulikunitz/vpx/rc"

// catBase contains the smallest magnitude of each category.
var catBase = [6]int{5, 7, 11, 19, 35, 67}

// Fixed probabilities of the extra bits, most significant bit first.
var (
	cat1Probs = []rc.Prob{159}
	cat2Probs = []rc.Prob{165, 145}
	cat3Probs = []rc.Prob{173, 148, 140}
	cat4Probs = []rc.Prob{176, 155, 140, 135}
	cat5Probs = []rc.Prob{180, 157, 141, 134, 130}
	// The table covers 12-bit input. Lower bit depths skip the leading
	// entries.
	cat6Probs = []rc.Prob{
		255, 255, 255, 255, 254, 254, 254, 252, 249,
		243, 230, 196, 177, 153, 140, 133, 130, 129,
	}
)

// cat6Bits returns the number of extra bits of CAT6.
func cat6Bits(bitDepth int) int {
	return 14 + bitDepth - 8
}

// ExtraProbs returns the probabilities of the extra bits of a category
// token. For other tokens it returns nil.
func ExtraProbs(t Token, bitDepth int) []rc.Prob {
	switch t {
	case Cat1:
		return cat1Probs
	case Cat2:
		return cat2Probs
	case Cat3:
		return cat3Probs
	case Cat4:
		return cat4Probs
	case Cat5:
		return cat5Probs
	case Cat6:
		return cat6Probs[len(cat6Probs)-cat6Bits(bitDepth):]
	}
	return nil
}

// Range returns the smallest and largest magnitude represented by t.
func Range(t Token, bitDepth int) (lo, hi int) {
	switch {
	case t == EOB:
		return 0, 0
	case t <= Four:
		return int(t), int(t)
	}
	lo = catBase[t-Cat1]
	return lo, lo + 1<<uint(len(ExtraProbs(t, bitDepth))) - 1
}
