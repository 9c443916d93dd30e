// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package tuning codes corpus data as coefficient blocks. It supports the
// measurement of coded sizes for different coder configurations.
package tuning

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ulikunitz/vpx"
	"github.com/ulikunitz/vpx/probs"
	"github.com/ulikunitz/vpx/rc"
	"github.com/ulikunitz/vpx/scan"
)

type File struct {
	Name string
	Data []byte
}

func Files(corpus fs.FS) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

// Options control the conversion of data into frames.
type Options struct {
	vpx.Config
	// Tx is the transform size of all blocks.
	Tx scan.TxSize
	// Cols and Rows give the size of a frame in 4x4 luma units.
	// (default: 32x32)
	Cols, Rows int
	// KeyInterval is the distance between key frames. (default: 16)
	KeyInterval int
	// NoUpdates disables the differential probability updates.
	NoUpdates bool
	// FrameParallel disables the adaptation of the probabilities.
	FrameParallel bool
	// MaxFrames limits the number of frames per file. Zero means no
	// limit.
	MaxFrames int
}

// ApplyDefaults sets the zero values to their defaults.
func (o *Options) ApplyDefaults() {
	o.Config.ApplyDefaults()
	if o.Cols == 0 {
		o.Cols = 32
	}
	if o.Rows == 0 {
		o.Rows = 32
	}
	if o.KeyInterval == 0 {
		o.KeyInterval = 16
	}
}

// Verify checks the options and sets defaults.
func (o *Options) Verify() error {
	if o == nil {
		return errors.New("tuning: options are nil")
	}
	o.ApplyDefaults()
	if err := o.Config.Verify(); err != nil {
		return err
	}
	if o.Tx >= scan.TxSizes {
		return fmt.Errorf("tuning: invalid transform size %d", o.Tx)
	}
	if o.Cols <= 0 || o.Rows <= 0 {
		return errors.New("tuning: invalid frame size")
	}
	if o.KeyInterval < 0 || o.MaxFrames < 0 {
		return errors.New("tuning: negative frame count")
	}
	return nil
}

// Block is a coefficient block derived from data.
type Block struct {
	Info   vpx.BlockInfo
	Coeffs []int32
}

// level maps a byte to a quantized level. Text is mapped to small levels
// while binary data produces the complete range of the 8-bit tokens.
func level(b byte) int32 {
	return int32(int8(b-0x60)) / 16
}

// Blocks converts data into the blocks of a frame. The first byte of each
// block defines the number of coded scan positions, the following bytes
// provide the levels. It returns the blocks and the number of bytes
// consumed.
func Blocks(data []byte, o *Options) (blocks []Block, n int) {
	w := o.Tx.Units()
	ssx, ssy := o.ChromaFormat.Subsampling()
	cw, ch := o.Cols, o.Rows
	for plane := 0; plane < scan.Planes; plane++ {
		if plane == 1 {
			cw = (o.Cols + 1<<ssx - 1) >> ssx
			ch = (o.Rows + 1<<ssy - 1) >> ssy
		}
		for row := 0; row < ch; row += w {
			for col := 0; col < cw; col += w {
				if n >= len(data) {
					return blocks, n
				}
				bi := vpx.BlockInfo{
					Plane:  plane,
					Col:    col,
					Row:    row,
					Tx:     o.Tx,
					TxType: scan.TxType(data[n] & 3),
					Inter:  data[n]&4 != 0,
				}
				order := scan.Get(bi.Tx, bi.TxType)
				k := (int(data[n]) * len(order.Scan)) >> 8
				n++
				c := make([]int32, len(order.Scan))
				for pos := 0; pos < k && n < len(data); pos++ {
					c[order.Scan[pos]] = level(data[n])
					n++
				}
				blocks = append(blocks, Block{bi, c})
			}
		}
	}
	return blocks, n
}

// Result summarizes the coding of data.
type Result struct {
	Frames int
	Blocks int
	// HeaderSize is the size of the probability updates in bytes.
	HeaderSize int64
	// TileSize is the size of the tile data in bytes.
	TileSize int64
	// EstimatedSize is the tile size estimated by the counting
	// encoders. It is zero if probability updates are disabled.
	EstimatedSize int64
}

// CodedSize returns the total size of the coded frames.
func (r *Result) CodedSize() int64 { return r.HeaderSize + r.TileSize }

// Add adds the values of s to r.
func (r *Result) Add(s Result) {
	r.Frames += s.Frames
	r.Blocks += s.Blocks
	r.HeaderSize += s.HeaderSize
	r.TileSize += s.TileSize
	r.EstimatedSize += s.EstimatedSize
}

type frame struct {
	header vpx.FrameHeader
	blocks []Block
	// coded data
	updates  []byte
	tile     []byte
	estimate int64
}

func (o *Options) frameHeader(i int) vpx.FrameHeader {
	h := vpx.FrameHeader{
		Type:           vpx.InterFrame,
		FrameParallel:  o.FrameParallel,
		RefreshContext: true,
		TxMode:         probs.TxModeSelect,
	}
	if i%o.KeyInterval == 0 {
		h.Type = vpx.KeyFrame
	} else {
		h.ContextIndex = 1 + i%(vpx.FrameContexts-1)
	}
	return h
}

func (o *Options) frames(data []byte) []frame {
	var frames []frame
	for i := 0; len(data) > 0; i++ {
		if o.MaxFrames > 0 && i >= o.MaxFrames {
			break
		}
		blocks, n := Blocks(data, o)
		data = data[n:]
		frames = append(frames, frame{
			header: o.frameHeader(i),
			blocks: blocks,
		})
	}
	return frames
}

func encodeBlocks(te *vpx.TileEncoder, blocks []Block) error {
	for i := range blocks {
		b := &blocks[i]
		if te.StartsSuperblockRow(&b.Info) {
			te.ResetLeft()
		}
		if _, err := te.EncodeBlock(&b.Info, b.Coeffs); err != nil {
			return err
		}
	}
	return nil
}

func encodeFrame(s *vpx.ContextStore, f *frame, o *Options) error {
	fr, err := s.BeginFrame(f.header)
	if err != nil {
		return err
	}
	hw := rc.NewEncoder(nil)
	if !o.NoUpdates {
		ce, err := fr.NewCountingEncoder(o.Cols, o.Rows)
		if err != nil {
			return err
		}
		if err = encodeBlocks(ce, f.blocks); err != nil {
			return err
		}
		if _, err = ce.Finish(); err != nil {
			return err
		}
		f.estimate = ce.EstimatedSize()
		fr.WriteUpdates(hw, fr.PlanUpdates(ce.Counts()))
	} else {
		fr.WriteUpdates(hw, fr.Probs())
	}
	hw.Finish()
	f.updates = hw.Bytes()

	te, err := fr.NewTileEncoder(o.Cols, o.Rows)
	if err != nil {
		return err
	}
	if err = encodeBlocks(te, f.blocks); err != nil {
		return err
	}
	if f.tile, err = te.Finish(); err != nil {
		return err
	}
	return s.EndFrame(fr)
}

func decodeFrame(s *vpx.ContextStore, f *frame, o *Options) error {
	fr, err := s.BeginFrame(f.header)
	if err != nil {
		return err
	}
	hr, err := rc.NewDecoder(f.updates)
	if err != nil {
		return err
	}
	fr.ReadUpdates(hr)
	td, err := fr.NewTileDecoder(f.tile, o.Cols, o.Rows)
	if err != nil {
		return err
	}
	for i := range f.blocks {
		b := &f.blocks[i]
		c := make([]int32, len(b.Coeffs))
		if td.StartsSuperblockRow(&b.Info) {
			td.ResetLeft()
		}
		if _, err = td.DecodeBlock(&b.Info, nil, c); err != nil {
			return err
		}
		for j, v := range c {
			if v != b.Coeffs[j] {
				return fmt.Errorf(
					"tuning: frame block %d coefficient %d: got %d; want %d",
					i, j, v, b.Coeffs[j])
			}
		}
	}
	if err = td.Finish(); err != nil {
		return err
	}
	if fr.Corrupted() {
		return errors.New("tuning: frame corrupted")
	}
	return s.EndFrame(fr)
}

// Code codes the data as a sequence of frames. If verify is set the
// frames are decoded again and compared with the input.
func Code(data []byte, o Options, verify bool) (r Result, err error) {
	if err = o.Verify(); err != nil {
		return r, err
	}
	frames := o.frames(data)
	enc, err := vpx.NewContextStore(o.Config)
	if err != nil {
		return r, err
	}
	for i := range frames {
		f := &frames[i]
		if err = encodeFrame(enc, f, &o); err != nil {
			return r, fmt.Errorf("tuning: encode frame %d: %w", i, err)
		}
		r.Frames++
		r.Blocks += len(f.blocks)
		r.HeaderSize += int64(len(f.updates))
		r.TileSize += int64(len(f.tile))
		r.EstimatedSize += f.estimate
	}
	if !verify {
		return r, nil
	}
	dec, err := vpx.NewContextStore(o.Config)
	if err != nil {
		return r, err
	}
	for i := range frames {
		if err = decodeFrame(dec, &frames[i], &o); err != nil {
			return r, fmt.Errorf("tuning: decode frame %d: %w", i, err)
		}
	}
	return r, nil
}

// CodedSize codes all files and returns the accumulated result.
func CodedSize(files []File, o Options) (r Result, err error) {
	for _, f := range files {
		s, err := Code(f.Data, o, false)
		if err != nil {
			return r, fmt.Errorf("%s: %w", f.Name, err)
		}
		r.Add(s)
	}
	return r, nil
}
