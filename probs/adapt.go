// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package probs

import (
	"github.com/ulikunitz/vpx/rc"
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

// Parameters of the forward adaptation.
const (
	// CountSat is the number of observations at which a context has
	// full weight.
	CountSat = 24
	// MaxUpdateFactor is the weight of fully saturated counts in 1/256.
	MaxUpdateFactor = 112
	// MaxUpdateFactorKey is used for key frames and intra-only frames.
	MaxUpdateFactorKey = 112
	// MaxUpdateFactorAfterKey is used for the first frame after a key
	// frame.
	MaxUpdateFactorAfterKey = 128
)

// UpdateFactor returns the maximum update factor for a frame.
func UpdateFactor(intraOnly, lastWasKey bool) int {
	switch {
	case intraOnly:
		return MaxUpdateFactorKey
	case lastWasKey:
		return MaxUpdateFactorAfterKey
	}
	return MaxUpdateFactor
}

// binaryProb returns the probability of the zero branch observed in the
// counts. Without observations it returns 128.
func binaryProb(n0, n1 uint32) rc.Prob {
	den := uint64(n0) + uint64(n1)
	if den == 0 {
		return rc.HalfProb
	}
	p := (uint64(n0)*256 + den>>1) / den
	if p > 255 {
		p = 255
	}
	return rc.ClipProb(int(p))
}

// weightedProb blends p1 and p2 with factor/256 weight on p2.
func weightedProb(p1, p2 rc.Prob, factor int) rc.Prob {
	return rc.Prob((int(p1)*(256-factor) + int(p2)*factor + 128) >> 8)
}

// mergeProb computes the adapted probability from the baseline pre and the
// branch counts ct.
func mergeProb(pre rc.Prob, ct [2]uint32, maxUpdate int) rc.Prob {
	p := binaryProb(ct[0], ct[1])
	count := uint64(ct[0]) + uint64(ct[1])
	if count > CountSat {
		count = CountSat
	}
	factor := maxUpdate * int(count) / CountSat
	return weightedProb(pre, p, factor)
}

// Adapt sets t to the probabilities adapted from the baseline pre and the
// counts of the frame. maxUpdate is the result of UpdateFactor. The
// current content of t is replaced, including the differential updates
// applied during the frame.
func (t *Table) Adapt(pre *Table, c *Counts, maxUpdate int) {
	for tx := scan.TxSize(0); tx < TxSizes; tx++ {
		for plane := PlaneType(0); plane < PlaneTypes; plane++ {
			for ref := RefType(0); ref < RefTypes; ref++ {
				dst := &t.Coef[tx][plane][ref]
				src := &pre.Coef[tx][plane][ref]
				cnt := &c.Coef[tx][plane][ref]
				for band := 0; band < Bands; band++ {
					for ctx := 0; ctx < Contexts; ctx++ {
						if ctx >= scan.BandContexts(band) {
							dst[band][ctx] = src[band][ctx]
							continue
						}
						ct := cnt.branchCounts(band, ctx)
						for node := 0; node < token.UnconstrainedNodes; node++ {
							dst[band][ctx][node] = mergeProb(
								src[band][ctx][node],
								ct[node], maxUpdate)
						}
					}
				}
			}
		}
	}
}
