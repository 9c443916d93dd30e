// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package probs

import (
	"fmt"

	"github.com/ulikunitz/vpx/rc"
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

// TxMode is the transform mode of a frame. It limits the transform sizes
// used and thereby the probabilities that can be updated.
type TxMode uint8

// Transform modes.
const (
	Only4x4 TxMode = iota
	Allow8x8
	Allow16x16
	Allow32x32
	TxModeSelect

	// TxModes is the number of transform modes.
	TxModes = 5
)

var txModeNames = [TxModes]string{
	"ONLY_4X4", "ALLOW_8X8", "ALLOW_16X16", "ALLOW_32X32", "TX_MODE_SELECT",
}

// String returns the name of the transform mode.
func (m TxMode) String() string {
	if m < TxModes {
		return txModeNames[m]
	}
	return fmt.Sprintf("TxMode(%d)", uint8(m))
}

// MaxTxSize returns the largest transform size allowed by the mode.
func (m TxMode) MaxTxSize() scan.TxSize {
	if m >= Allow32x32 {
		return scan.Tx32x32
	}
	return scan.TxSize(m)
}

// DiffUpdateProb is the probability that a node probability is not
// updated.
const DiffUpdateProb rc.Prob = 252

// eachNode calls f for all nodes of the valid band contexts of one
// transform size in transmission order.
func (t *Table) eachNode(tx scan.TxSize, f func(p *rc.Prob, plane PlaneType,
	ref RefType, band, ctx, node int)) {
	for plane := PlaneType(0); plane < PlaneTypes; plane++ {
		for ref := RefType(0); ref < RefTypes; ref++ {
			b := &t.Coef[tx][plane][ref]
			for band := 0; band < Bands; band++ {
				for ctx := 0; ctx < scan.BandContexts(band); ctx++ {
					for node := 0; node < token.UnconstrainedNodes; node++ {
						f(&b[band][ctx][node], plane, ref,
							band, ctx, node)
					}
				}
			}
		}
	}
}

// ReadUpdates reads the differential updates of the coefficient
// probabilities from the compressed frame header and applies them to t.
// For every transform size allowed by mode a flag tells whether any
// update follows; then every node has an update flag coded with
// DiffUpdateProb followed by the delta if set.
func (t *Table) ReadUpdates(r Reader, mode TxMode) {
	for tx := scan.Tx4x4; tx <= mode.MaxTxSize(); tx++ {
		if r.ReadLiteral(1) == 0 {
			continue
		}
		t.eachNode(tx, func(p *rc.Prob, _ PlaneType, _ RefType,
			_, _, _ int) {
			if r.ReadBool(DiffUpdateProb) {
				*p = invRemapProb(readTermSubexp(r), *p)
			}
		})
	}
}

// WriteUpdates writes the differences between t and target for the
// transform sizes allowed by mode and applies them to t. Differences for
// larger transform sizes cannot be transmitted and are ignored.
func (t *Table) WriteUpdates(w Writer, target *Table, mode TxMode) {
	for tx := scan.Tx4x4; tx <= mode.MaxTxSize(); tx++ {
		if t.Coef[tx] == target.Coef[tx] {
			w.WriteLiteral(0, 1)
			continue
		}
		w.WriteLiteral(1, 1)
		dst := &target.Coef[tx]
		t.eachNode(tx, func(p *rc.Prob, plane PlaneType, ref RefType,
			band, ctx, node int) {
			newp := dst[plane][ref][band][ctx][node]
			if newp == *p {
				w.WriteBool(false, DiffUpdateProb)
				return
			}
			w.WriteBool(true, DiffUpdateProb)
			writeTermSubexp(w, remapProb(newp, *p))
			*p = newp
		})
	}
}

func costZero(p rc.Prob) int64 { return int64(rc.Cost(false, p)) }
func costOne(p rc.Prob) int64  { return int64(rc.Cost(true, p)) }

// costBranch returns the cost of coding the branch counts ct with p.
func costBranch(ct [2]uint32, p rc.Prob) int64 {
	return int64(ct[0])*costZero(p) + int64(ct[1])*costOne(p)
}

// savingsSearch walks from start towards oldp and returns the probability
// with the largest savings, including the cost of the update itself. If
// no probability saves bits, oldp is returned with zero savings.
func savingsSearch(ct [2]uint32, oldp, start rc.Prob) (newp rc.Prob, savings int64) {
	oldCost := costBranch(ct, oldp)
	updCost := costOne(DiffUpdateProb) - costZero(DiffUpdateProb)
	newp = oldp
	step := 1
	if start > oldp {
		step = -1
	}
	for q := int(start); q != int(oldp); q += step {
		p := rc.Prob(q)
		u := int64(termSubexpBits(remapProb(p, oldp)))<<rc.CostShift + updCost
		s := oldCost - costBranch(ct, p) - u
		if s > savings {
			savings = s
			newp = p
		}
	}
	return newp, savings
}

// Plan computes the probabilities an encoder should transmit for a frame
// whose token statistics are given by c. Each node moves towards the
// probability observed in c as far as the savings pay for the update. The
// updates of a transform size are dropped if they don't save bits in
// total. Apply the plan with WriteUpdates.
func (t *Table) Plan(c *Counts, mode TxMode) *Table {
	target := t.Snapshot()
	for tx := scan.Tx4x4; tx <= mode.MaxTxSize(); tx++ {
		var savings int64
		updates := 0
		stay := costZero(DiffUpdateProb)
		target.eachNode(tx, func(p *rc.Prob, plane PlaneType, ref RefType,
			band, ctx, node int) {
			ct := c.Coef[tx][plane][ref].branchCounts(band, ctx)[node]
			start := binaryProb(ct[0], ct[1])
			newp, s := savingsSearch(ct, *p, start)
			if s > 0 && newp != *p {
				savings += s - stay
				updates++
				*p = newp
				return
			}
			savings -= stay
		})
		if updates == 0 || savings < 0 {
			target.Coef[tx] = t.Coef[tx]
		}
	}
	return target
}
