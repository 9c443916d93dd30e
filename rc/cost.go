// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import "math"

// CostShift gives the precision of bit costs. Costs are measured in units
// of 1/(1<<CostShift) bit.
const CostShift = 8

// costTable contains the cost of a zero bit coded with probability p.
var costTable [256]uint16

func init() {
	for p := 1; p < 256; p++ {
		c := -math.Log2(float64(p)/256) * (1 << CostShift)
		costTable[p] = uint16(math.Floor(c + 0.5))
	}
}

// Cost returns the cost of coding bit with the probability p for a zero
// bit.
func Cost(bit bool, p Prob) int {
	if bit {
		return int(costTable[256-int(p)])
	}
	return int(costTable[p])
}
