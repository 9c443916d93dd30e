// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package coef encodes and decodes the quantized coefficients of transform
// blocks. A block is coded as a sequence of tokens in scan order, each
// token coded with the probabilities selected by the band of its scan
// position and the context derived from the tokens already coded. The end
// of the block is signalled by an EOB token unless the block extends to
// the segment limit.
package coef

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/vpx/probs"
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

var (
	// ErrCorruptStream indicates that the decoder ran out of data or
	// read an inconsistent token sequence.
	ErrCorruptStream = errors.New("coef: corrupt stream")
	// ErrRangeOverflow indicates a reconstructed coefficient outside the
	// range supported by the bit depth.
	ErrRangeOverflow = errors.New("coef: coefficient out of range")
)

// Block describes the transform block to be coded.
type Block struct {
	Tx    scan.TxSize
	Plane probs.PlaneType
	Ref   probs.RefType
	// Order is the scan order selected for the transform type.
	Order *scan.Order
	// Ctx is the context of the first scan position, usually computed
	// by scan.EntropyContext.Get.
	Ctx int
	// SegEOB limits the number of coded coefficients. It is zero for
	// blocks of skipped segments.
	SegEOB int
}

// verify checks the block parameters.
func (b *Block) verify() error {
	if b.Tx >= scan.TxSizes {
		return fmt.Errorf("coef: invalid transform size %d", b.Tx)
	}
	if b.Plane >= probs.PlaneTypes || b.Ref >= probs.RefTypes {
		return errors.New("coef: invalid plane or reference type")
	}
	if b.Order == nil || len(b.Order.Scan) != b.Tx.Len() {
		return errors.New("coef: scan order doesn't fit transform size")
	}
	if !(0 <= b.Ctx && b.Ctx <= 2) {
		return fmt.Errorf("coef: invalid initial context %d", b.Ctx)
	}
	if !(0 <= b.SegEOB && b.SegEOB <= b.Tx.Len()) {
		return fmt.Errorf("coef: segment limit %d out of range",
			b.SegEOB)
	}
	return nil
}

// Dequant contains the dequantization steps of a plane.
type Dequant struct {
	DC int32
	AC int32
}

// step returns the step for the scan position.
func (dq *Dequant) step(pos int) int64 {
	if pos == 0 {
		return int64(dq.DC)
	}
	return int64(dq.AC)
}

// coefLimit returns the largest magnitude of a reconstructed coefficient.
// Negative coefficients may reach one more.
func coefLimit(bitDepth int) int64 {
	return 1<<uint(7+bitDepth) - 1
}

// verifyBitDepth checks the bit depth given to the constructors.
func verifyBitDepth(bitDepth int) error {
	if !token.ValidBitDepth(bitDepth) {
		return fmt.Errorf("coef: unsupported bit depth %d", bitDepth)
	}
	return nil
}

// selectProbs returns the probabilities and counts for the block. The
// counts are nil if c is nil.
func selectProbs(b *Block, t *probs.Table, c *probs.Counts) (*probs.BlockProbs, *probs.BlockCounts) {
	p := t.Block(b.Tx, b.Plane, b.Ref)
	if c == nil {
		return p, nil
	}
	return p, c.Block(b.Tx, b.Plane, b.Ref)
}
