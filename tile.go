// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package vpx

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/vpx/coef"
	"github.com/ulikunitz/vpx/internal/discard"
	"github.com/ulikunitz/vpx/internal/xlog"
	"github.com/ulikunitz/vpx/probs"
	"github.com/ulikunitz/vpx/rc"
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

// BlockInfo describes a transform block of a tile.
type BlockInfo struct {
	// Plane is 0 for luma and 1 or 2 for the chroma planes.
	Plane int
	// Col and Row give the position in 4x4 units of the plane relative
	// to the tile.
	Col, Row int
	Tx       scan.TxSize
	TxType   scan.TxType
	// Inter is set for blocks of inter predicted blocks.
	Inter bool
	// Skip is set if the segment of the block doesn't code any
	// coefficients.
	Skip bool
}

// tileState is shared by the tile encoder and decoder.
type tileState struct {
	frame  *Frame
	ectx   *scan.EntropyContext
	counts probs.Counts
	done   bool
}

func newTileState(f *Frame, cols, rows int) (*tileState, error) {
	if f == nil {
		return nil, errors.New("vpx: frame is nil")
	}
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("vpx: invalid tile size %dx%d", cols, rows)
	}
	ssx, ssy := f.store.cfg.ChromaFormat.Subsampling()
	return &tileState{
		frame: f,
		ectx:  scan.NewEntropyContext(cols, rows, ssx, ssy),
	}, nil
}

// block translates the block info and computes the initial context.
func (t *tileState) block(bi *BlockInfo) (*coef.Block, error) {
	if !(0 <= bi.Plane && bi.Plane < scan.Planes) {
		return nil, fmt.Errorf("vpx: invalid plane %d", bi.Plane)
	}
	if bi.Tx >= scan.TxSizes || bi.TxType >= scan.TxTypes {
		return nil, errors.New("vpx: invalid transform")
	}
	if bi.Tx > t.frame.Header.TxMode.MaxTxSize() {
		return nil, fmt.Errorf("vpx: transform size %s not allowed by %s",
			bi.Tx, t.frame.Header.TxMode)
	}
	cols, rows := t.ectx.Cols(bi.Plane), t.ectx.Rows(bi.Plane)
	if !(0 <= bi.Col && bi.Col < cols && 0 <= bi.Row && bi.Row < rows) {
		return nil, fmt.Errorf("vpx: block position %d,%d outside plane",
			bi.Col, bi.Row)
	}
	b := &coef.Block{
		Tx:    bi.Tx,
		Order: scan.Get(bi.Tx, bi.TxType),
		Ctx:   t.ectx.Get(bi.Plane, bi.Tx, bi.Col, bi.Row),
	}
	if bi.Plane > 0 {
		b.Plane = probs.UV
	}
	if bi.Inter {
		b.Ref = probs.Inter
	}
	if !bi.Skip {
		b.SegEOB = bi.Tx.Len()
	}
	return b, nil
}

// StartsSuperblockRow reports whether the block is the first block of a
// row of 64x64 superblocks in its plane. Encoder and decoder must call
// ResetLeft before coding such a block.
func (t *tileState) StartsSuperblockRow(bi *BlockInfo) bool {
	if !(0 <= bi.Plane && bi.Plane < scan.Planes) {
		return false
	}
	return t.ectx.StartsSuperblockRow(bi.Plane, bi.Col, bi.Row)
}

// ResetLeft clears the left contexts. It must be called at the start of
// every row of superblocks.
func (t *tileState) ResetLeft() { t.ectx.ResetLeft() }

// TileEncoder encodes the coefficient blocks of a tile into a single range
// coder stream.
type TileEncoder struct {
	tileState
	enc  *coef.Encoder
	rc   *rc.Encoder
	w    token.BoolWriter
	cost *discard.Writer
}

func newTileEncoder(f *Frame, cols, rows int) (*TileEncoder, error) {
	ts, err := newTileState(f, cols, rows)
	if err != nil {
		return nil, err
	}
	enc, err := coef.NewEncoder(f.store.cfg.BitDepth)
	if err != nil {
		return nil, err
	}
	return &TileEncoder{tileState: *ts, enc: enc}, nil
}

// NewTileEncoder creates an encoder for a tile of cols x rows 4x4 luma
// units.
func (f *Frame) NewTileEncoder(cols, rows int) (*TileEncoder, error) {
	t, err := newTileEncoder(f, cols, rows)
	if err != nil {
		return nil, err
	}
	t.rc = rc.NewEncoder(nil)
	t.w = t.rc
	return t, nil
}

// NewCountingEncoder creates a tile encoder that discards its output. It
// collects the token statistics and the estimated size of the tile;
// PlanUpdates uses the statistics to select probability updates. The
// statistics are not added to the frame.
func (f *Frame) NewCountingEncoder(cols, rows int) (*TileEncoder, error) {
	t, err := newTileEncoder(f, cols, rows)
	if err != nil {
		return nil, err
	}
	t.cost = new(discard.Writer)
	t.w = t.cost
	return t, nil
}

// EncodeBlock encodes the quantized coefficients of a block, given in
// raster order, and updates the entropy contexts. It returns the
// end-of-block position.
func (t *TileEncoder) EncodeBlock(bi *BlockInfo, coeffs []int32) (eob int, err error) {
	if t.done {
		return 0, errors.New("vpx: tile already finished")
	}
	b, err := t.block(bi)
	if err != nil {
		return 0, err
	}
	eob, err = t.enc.EncodeBlock(t.w, coeffs, b, t.frame.probs, &t.counts)
	if err != nil {
		return 0, err
	}
	t.ectx.Set(bi.Plane, bi.Tx, bi.Col, bi.Row, eob > 0)
	return eob, nil
}

// Counts returns the token statistics of the tile.
func (t *TileEncoder) Counts() *probs.Counts { return &t.counts }

// EstimatedSize returns the estimated size of the tile data in bytes. It
// is only available for counting encoders.
func (t *TileEncoder) EstimatedSize() int64 {
	if t.cost == nil {
		return 0
	}
	return t.cost.Bytes()
}

// Finish terminates the tile and returns its data. The statistics of the
// tile are added to the frame. Counting encoders return nil data.
func (t *TileEncoder) Finish() (data []byte, err error) {
	if t.done {
		return nil, errors.New("vpx: tile already finished")
	}
	t.done = true
	if t.rc == nil {
		return nil, nil
	}
	t.rc.Finish()
	t.frame.addTile(&t.counts, false)
	return t.rc.Bytes(), nil
}

// TileDecoder decodes the coefficient blocks of a tile.
type TileDecoder struct {
	tileState
	dec       *coef.Decoder
	rc        rc.Decoder
	corrupted bool
}

// NewTileDecoder creates a decoder for the tile data. The tile covers
// cols x rows 4x4 luma units. An invalid marker bit is not reported as an
// error; the tile is flagged corrupted instead.
func (f *Frame) NewTileDecoder(data []byte, cols, rows int) (*TileDecoder, error) {
	ts, err := newTileState(f, cols, rows)
	if err != nil {
		return nil, err
	}
	dec, err := coef.NewDecoder(f.store.cfg.BitDepth)
	if err != nil {
		return nil, err
	}
	t := &TileDecoder{tileState: *ts, dec: dec}
	if err = t.rc.Init(data); err != nil {
		xlog.Printf(f.store.cfg.Logger, "vpx: tile: %s", err)
		t.corrupted = true
	}
	return t, nil
}

// DecodeBlock decodes the coefficients of a block into coeffs in raster
// order. The coefficients at scan positions at or after the returned
// end-of-block position are not written; the caller has to provide them
// zeroed. Errors of the stream flag the tile as corrupted, but the block
// is still complete and decoding may continue.
func (t *TileDecoder) DecodeBlock(bi *BlockInfo, dq *coef.Dequant, coeffs []int32) (eob int, err error) {
	if t.done {
		return 0, errors.New("vpx: tile already finished")
	}
	b, err := t.block(bi)
	if err != nil {
		return 0, err
	}
	eob, err = t.dec.DecodeBlock(&t.rc, b, t.frame.probs, &t.counts, dq,
		coeffs)
	switch {
	case err == nil:
	case errors.Is(err, coef.ErrCorruptStream),
		errors.Is(err, coef.ErrRangeOverflow):
		if !t.corrupted {
			xlog.Printf(t.frame.store.cfg.Logger,
				"vpx: tile corrupted at plane %d block %d,%d: %s",
				bi.Plane, bi.Col, bi.Row, err)
		}
		t.corrupted = true
	default:
		return 0, err
	}
	t.ectx.Set(bi.Plane, bi.Tx, bi.Col, bi.Row, eob > 0)
	return eob, err
}

// Corrupted reports whether the tile data was corrupted.
func (t *TileDecoder) Corrupted() bool {
	return t.corrupted || t.rc.Corrupted()
}

// Finish terminates the tile. The statistics of the tile are added to the
// frame and the frame inherits the corrupted flag of the tile.
func (t *TileDecoder) Finish() error {
	if t.done {
		return errors.New("vpx: tile already finished")
	}
	t.done = true
	t.frame.addTile(&t.counts, t.Corrupted())
	return nil
}
