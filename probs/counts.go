// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package probs

import (
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

// BlockCounts collects the token statistics for one transform size, plane
// type and reference type.
type BlockCounts struct {
	// Model counts the model tokens ZERO, ONE, TWO (all larger tokens)
	// and EOB.
	Model [Bands][Contexts][token.ModelTokens]uint32
	// EOBBranch counts the end-of-block decisions actually coded. The
	// decisions skipped after a ZERO token are not counted.
	EOBBranch [Bands][Contexts]uint32
}

// Accumulate counts a coded token.
func (c *BlockCounts) Accumulate(band, ctx int, t token.Token) {
	c.Model[band][ctx][t.Model()]++
}

// CountEOBCheck counts a coded end-of-block decision.
func (c *BlockCounts) CountEOBCheck(band, ctx int) {
	c.EOBBranch[band][ctx]++
}

// Counts collects the token statistics of a frame. They drive the
// adaptation of the probabilities for the following frames.
type Counts struct {
	Coef [TxSizes][PlaneTypes][RefTypes]BlockCounts
}

// Block returns the counts for the given transform size, plane type and
// reference type.
func (c *Counts) Block(tx scan.TxSize, plane PlaneType, ref RefType) *BlockCounts {
	return &c.Coef[tx][plane][ref]
}

// Reset clears all counts.
func (c *Counts) Reset() {
	*c = Counts{}
}

// Add adds the counts of o to c. It combines the statistics of tiles
// decoded independently.
func (c *Counts) Add(o *Counts) {
	for tx := range c.Coef {
		for plane := range c.Coef[tx] {
			for ref := range c.Coef[tx][plane] {
				a, b := &c.Coef[tx][plane][ref], &o.Coef[tx][plane][ref]
				for band := range a.Model {
					for ctx := range a.Model[band] {
						for m := range a.Model[band][ctx] {
							a.Model[band][ctx][m] +=
								b.Model[band][ctx][m]
						}
						a.EOBBranch[band][ctx] +=
							b.EOBBranch[band][ctx]
					}
				}
			}
		}
	}
}

// branchCounts returns the zero and one branch counts of the unconstrained
// nodes. The EOB node is taken with a zero bit if the block ends.
func (c *BlockCounts) branchCounts(band, ctx int) [token.UnconstrainedNodes][2]uint32 {
	m := &c.Model[band][ctx]
	neob := m[token.ModelEOB]
	branch := c.EOBBranch[band][ctx]
	var more uint32
	if branch > neob {
		more = branch - neob
	}
	return [token.UnconstrainedNodes][2]uint32{
		{neob, more},
		{m[token.ModelZero], m[token.ModelOne] + m[token.ModelTwo]},
		{m[token.ModelOne], m[token.ModelTwo]},
	}
}
