// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package coef

import (
	"fmt"

	"github.com/ulikunitz/vpx/internal/xlog"
	"github.com/ulikunitz/vpx/probs"
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

// corrupter is implemented by readers that track whether they ran out of
// data, for instance *rc.Decoder.
type corrupter interface {
	Corrupted() bool
}

// Decoder reads the tokens of transform blocks. A decoder must not be used
// by multiple goroutines at the same time.
type Decoder struct {
	bitDepth int
	cache    [1024]uint8
}

// NewDecoder creates a decoder for the given bit depth.
func NewDecoder(bitDepth int) (*Decoder, error) {
	if err := verifyBitDepth(bitDepth); err != nil {
		return nil, err
	}
	return &Decoder{bitDepth: bitDepth}, nil
}

// BitDepth returns the bit depth of the decoder.
func (d *Decoder) BitDepth() int { return d.bitDepth }

// DecodeBlock reads the tokens of a block and stores the reconstructed
// coefficients in raster order into coeffs. Only the coefficients at scan
// positions before the returned end-of-block position are written; the
// others must be zero on entry. The end-of-block position never exceeds
// the segment limit.
//
// If dq is nil the quantized levels are stored. Otherwise the levels are
// multiplied by the DC or AC step; the products of 32x32 blocks are
// halved.
//
// Errors of the stream don't stop the decoding. If the reader ran out of
// data ErrCorruptStream is returned, if a coefficient had to be clamped
// ErrRangeOverflow. The block is complete in both cases and the reader is
// positioned after it.
func (d *Decoder) DecodeBlock(r token.BoolReader, b *Block, t *probs.Table,
	c *probs.Counts, dq *Dequant, coeffs []int32) (eob int, err error) {
	if err = b.verify(); err != nil {
		return 0, err
	}
	if len(coeffs) != b.Tx.Len() {
		return 0, fmt.Errorf("coef: block has %d coefficients; want %d",
			len(coeffs), b.Tx.Len())
	}
	var shift uint
	if b.Tx == scan.Tx32x32 {
		shift = 1
	}
	limit := coefLimit(d.bitDepth)

	p, cnt := selectProbs(b, t, c)
	s := b.Order.Scan
	bands := scan.BandTable(b.Tx)
	ctx := b.Ctx
	skipEOB := false
	pos := 0
	for ; pos < b.SegEOB; pos++ {
		band := int(bands[pos])
		tok, v := token.Decode(r, &p[band][ctx], skipEOB, d.bitDepth)
		if cnt != nil {
			if !skipEOB {
				cnt.CountEOBCheck(band, ctx)
			}
			cnt.Accumulate(band, ctx, tok)
		}
		if tok == token.EOB {
			break
		}
		rc := s[pos]
		if tok != token.Zero {
			x := int64(v)
			if dq != nil {
				m := x
				if m < 0 {
					m = -m
				}
				m = (m * dq.step(pos)) >> shift
				if x < 0 {
					m = -m
				}
				x = m
			}
			switch {
			case x > limit:
				x = limit
				err = ErrRangeOverflow
			case x < -limit-1:
				x = -limit - 1
				err = ErrRangeOverflow
			}
			coeffs[rc] = int32(x)
		} else {
			coeffs[rc] = 0
		}
		d.cache[rc] = tok.EnergyClass()
		skipEOB = tok == token.Zero
		ctx = b.Order.Context(d.cache[:], pos+1)
	}
	if cr, ok := r.(corrupter); ok && cr.Corrupted() {
		err = ErrCorruptStream
	}
	xlog.Printf(debug, "decode %s plane %d ref %d ctx %d eob %d",
		b.Tx, b.Plane, b.Ref, b.Ctx, pos)
	return pos, err
}
