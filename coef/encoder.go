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

// Encoder writes the tokens of transform blocks. An encoder must not be
// used by multiple goroutines at the same time.
type Encoder struct {
	bitDepth int
	cache    [1024]uint8
}

// NewEncoder creates an encoder for the given bit depth.
func NewEncoder(bitDepth int) (*Encoder, error) {
	if err := verifyBitDepth(bitDepth); err != nil {
		return nil, err
	}
	return &Encoder{bitDepth: bitDepth}, nil
}

// BitDepth returns the bit depth of the encoder.
func (e *Encoder) BitDepth() int { return e.bitDepth }

// EncodeBlock writes the quantized coefficients of a block. The
// coefficients are given in raster order. The returned end-of-block
// position is the scan position following the last nonzero coefficient.
// The counts are incremented exactly as the decoder will increment them;
// they may be nil.
//
// Coefficients that cannot be represented by a token and nonzero
// coefficients at or beyond the segment limit are reported as errors
// before anything is written.
func (e *Encoder) EncodeBlock(w token.BoolWriter, coeffs []int32, b *Block,
	t *probs.Table, c *probs.Counts) (eob int, err error) {
	if err = b.verify(); err != nil {
		return 0, err
	}
	if len(coeffs) != b.Tx.Len() {
		return 0, fmt.Errorf("coef: block has %d coefficients; want %d",
			len(coeffs), b.Tx.Len())
	}
	s := b.Order.Scan
	for pos, rc := range s {
		v := coeffs[rc]
		if v == 0 {
			continue
		}
		if _, _, err = token.Classify(int(v), e.bitDepth); err != nil {
			return 0, fmt.Errorf("coef: coefficient %d at %d: %w",
				v, rc, err)
		}
		eob = pos + 1
	}
	if eob > b.SegEOB {
		return 0, fmt.Errorf(
			"coef: nonzero coefficient at scan position %d beyond segment limit %d",
			eob-1, b.SegEOB)
	}

	p, cnt := selectProbs(b, t, c)
	bands := scan.BandTable(b.Tx)
	ctx := b.Ctx
	skipEOB := false
	pos := 0
	for ; pos < eob; pos++ {
		band := int(bands[pos])
		v := int(coeffs[s[pos]])
		tok, _, _ := token.Classify(v, e.bitDepth)
		token.Encode(w, tok, v, &p[band][ctx], skipEOB, e.bitDepth)
		if cnt != nil {
			if !skipEOB {
				cnt.CountEOBCheck(band, ctx)
			}
			cnt.Accumulate(band, ctx, tok)
		}
		e.cache[s[pos]] = tok.EnergyClass()
		skipEOB = tok == token.Zero
		ctx = b.Order.Context(e.cache[:], pos+1)
	}
	if pos < b.SegEOB {
		band := int(bands[pos])
		token.Encode(w, token.EOB, 0, &p[band][ctx], false, e.bitDepth)
		if cnt != nil {
			cnt.CountEOBCheck(band, ctx)
			cnt.Accumulate(band, ctx, token.EOB)
		}
	}
	xlog.Printf(debug, "encode %s plane %d ref %d ctx %d eob %d",
		b.Tx, b.Plane, b.Ref, b.Ctx, eob)
	return eob, nil
}
