// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package tuning

import (
	"strings"
	"testing"

	"github.com/ulikunitz/zdata"

	"github.com/ulikunitz/vpx"
	"github.com/ulikunitz/vpx/scan"
)

func TestBlocks(t *testing.T) {
	o := Options{Cols: 4, Rows: 4}
	if err := o.Verify(); err != nil {
		t.Fatalf("Verify error %s", err)
	}
	data := []byte{0x30, 0x20, 0x70, 0x61, 0x05}
	blocks, n := Blocks(data, &o)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks; want %d", len(blocks), 2)
	}
	if n != len(data) {
		t.Fatalf("consumed %d bytes; want %d", n, len(data))
	}
	b := blocks[0]
	if b.Info.Plane != 0 || b.Info.Col != 0 || b.Info.Row != 0 {
		t.Fatalf("first block at plane %d %d,%d", b.Info.Plane,
			b.Info.Col, b.Info.Row)
	}
	o2 := scan.Get(b.Info.Tx, b.Info.TxType)
	want := []int32{-4, 1, 0}
	for i, w := range want {
		if g := b.Coeffs[o2.Scan[i]]; g != w {
			t.Fatalf("coefficient %d: got %d; want %d", i, g, w)
		}
	}
	for i := 3; i < len(o2.Scan); i++ {
		if b.Coeffs[o2.Scan[i]] != 0 {
			t.Fatalf("coefficient %d nonzero", i)
		}
	}
	b = blocks[1]
	if b.Info.Col != 1 || b.Info.TxType != scan.ADSTDCT || !b.Info.Inter {
		t.Fatalf("second block %+v", b.Info)
	}
}

func TestCode(t *testing.T) {
	data := []byte(strings.Repeat(
		"The quick brown fox jumps over the lazy dog. ", 200))
	for tx := scan.Tx4x4; tx < scan.TxSizes; tx++ {
		o := Options{Tx: tx, Cols: 16, Rows: 8, KeyInterval: 3}
		r, err := Code(data, o, true)
		if err != nil {
			t.Fatalf("%s: Code error %s", tx, err)
		}
		if r.Frames == 0 || r.Blocks == 0 {
			t.Fatalf("%s: no frames coded", tx)
		}
		if r.CodedSize() >= int64(len(data)) {
			t.Fatalf("%s: coded size %d exceeds input size %d",
				tx, r.CodedSize(), len(data))
		}
	}
}

func TestCodeOptions(t *testing.T) {
	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	options := []Options{
		{NoUpdates: true},
		{FrameParallel: true},
		{Config: vpx.Config{BitDepth: 12}, MaxFrames: 2},
		{Config: vpx.Config{ChromaFormat: vpx.Chroma444}},
	}
	for _, o := range options {
		if _, err := Code(data, o, true); err != nil {
			t.Fatalf("%+v: Code error %s", o, err)
		}
	}
	if _, err := Code(data, Options{Tx: scan.TxSizes}, false); err == nil {
		t.Fatal("Code accepted invalid transform size")
	}
}

func TestCodeSuperblockRows(t *testing.T) {
	data := make([]byte, 20000)
	for i := range data {
		data[i] = byte(i*i + i/3)
	}
	o := Options{Tx: scan.Tx4x4, Cols: 8, Rows: 40, KeyInterval: 2}
	r, err := Code(data, o, true)
	if err != nil {
		t.Fatalf("Code error %s", err)
	}
	if r.EstimatedSize <= 0 {
		t.Fatalf("estimated size %d; want positive value",
			r.EstimatedSize)
	}
	t.Logf("tile size %d estimated %d", r.TileSize, r.EstimatedSize)

	o.NoUpdates = true
	if r, err = Code(data, o, true); err != nil {
		t.Fatalf("NoUpdates: Code error %s", err)
	}
	if r.EstimatedSize != 0 {
		t.Fatalf("estimated size %d without updates; want 0",
			r.EstimatedSize)
	}
}

func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("slow test")
	}
	files, err := Files(zdata.Silesia)
	if err != nil {
		t.Fatalf("Files(zdata.Silesia) error %s", err)
	}
	for _, f := range files {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			t.Parallel()
			o := Options{Tx: scan.Tx8x8, MaxFrames: 64}
			r, err := Code(f.Data, o, true)
			if err != nil {
				t.Fatalf("%s: Code error %s", f.Name, err)
			}
			t.Logf("%s: %d frames %d bytes", f.Name, r.Frames,
				r.CodedSize())
		})
	}
}
