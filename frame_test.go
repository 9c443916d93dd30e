// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package vpx

import (
	"bytes"
	"errors"
	"log"
	"math/rand"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"github.com/ulikunitz/vpx/coef"
	"github.com/ulikunitz/vpx/internal/randcoef"
	"github.com/ulikunitz/vpx/probs"
	"github.com/ulikunitz/vpx/rc"
	"github.com/ulikunitz/vpx/scan"
)

func TestConfig(t *testing.T) {
	var cfg Config
	if err := cfg.Verify(); err != nil {
		t.Fatalf("Verify error %s", err)
	}
	if cfg.BitDepth != 8 {
		t.Fatalf("default bit depth %d; want 8", cfg.BitDepth)
	}
	cfg.BitDepth = 11
	if err := cfg.Verify(); err == nil {
		t.Fatal("Verify accepted bit depth 11")
	}
	if _, err := NewContextStore(Config{ChromaFormat: 7}); err == nil {
		t.Fatal("NewContextStore accepted an invalid chroma format")
	}
}

type testBlock struct {
	bi     BlockInfo
	coeffs []int32
}

// tileBlocks covers all planes of a tile with transform blocks.
func tileBlocks(r *rand.Rand, cols, rows int, mode probs.TxMode) []testBlock {
	src := randcoef.NewSource(rand.NewSource(r.Int63()))
	var blocks []testBlock
	for plane := 0; plane < scan.Planes; plane++ {
		w, h := cols, rows
		if plane > 0 {
			w, h = (cols+1)/2, (rows+1)/2
		}
		tx := scan.TxSize(r.Intn(int(mode.MaxTxSize()) + 1))
		n := tx.Units()
		for row := 0; row < h; row += n {
			for col := 0; col < w; col += n {
				bi := BlockInfo{
					Plane:  plane,
					Col:    col,
					Row:    row,
					Tx:     tx,
					TxType: scan.TxType(r.Intn(scan.TxTypes)),
					Inter:  r.Intn(2) == 0,
					Skip:   r.Intn(10) == 0,
				}
				var c []int32
				if bi.Skip {
					c = make([]int32, tx.Len())
				} else {
					c = src.Block(scan.Get(tx, bi.TxType),
						tx.Len()/4)
				}
				blocks = append(blocks, testBlock{bi, c})
			}
		}
	}
	return blocks
}

type codedFrame struct {
	header []byte
	tile   []byte
	eobs   []int
}

func encodeFrame(t *testing.T, s *ContextStore, h FrameHeader,
	blocks []testBlock, cols, rows int) codedFrame {
	f, err := s.BeginFrame(h)
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	ce, err := f.NewCountingEncoder(cols, rows)
	if err != nil {
		t.Fatalf("NewCountingEncoder error %s", err)
	}
	for _, b := range blocks {
		if ce.StartsSuperblockRow(&b.bi) {
			ce.ResetLeft()
		}
		if _, err = ce.EncodeBlock(&b.bi, b.coeffs); err != nil {
			t.Fatalf("counting EncodeBlock error %s", err)
		}
	}
	if _, err = ce.Finish(); err != nil {
		t.Fatalf("counting Finish error %s", err)
	}
	target := f.PlanUpdates(ce.Counts())

	hw := rc.NewEncoder(nil)
	f.WriteUpdates(hw, target)
	hw.Finish()

	te, err := f.NewTileEncoder(cols, rows)
	if err != nil {
		t.Fatalf("NewTileEncoder error %s", err)
	}
	var cf codedFrame
	for _, b := range blocks {
		if te.StartsSuperblockRow(&b.bi) {
			te.ResetLeft()
		}
		eob, err := te.EncodeBlock(&b.bi, b.coeffs)
		if err != nil {
			t.Fatalf("EncodeBlock error %s", err)
		}
		cf.eobs = append(cf.eobs, eob)
	}
	if cf.tile, err = te.Finish(); err != nil {
		t.Fatalf("Finish error %s", err)
	}
	cf.header = hw.Bytes()
	if err = s.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}
	return cf
}

func decodeFrame(t *testing.T, s *ContextStore, h FrameHeader,
	cf codedFrame, blocks []testBlock, cols, rows int) *Frame {
	f, err := s.BeginFrame(h)
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	hr, err := rc.NewDecoder(cf.header)
	if err != nil {
		t.Fatalf("rc.NewDecoder error %s", err)
	}
	f.ReadUpdates(hr)
	td, err := f.NewTileDecoder(cf.tile, cols, rows)
	if err != nil {
		t.Fatalf("NewTileDecoder error %s", err)
	}
	for i, b := range blocks {
		out := make([]int32, b.bi.Tx.Len())
		if td.StartsSuperblockRow(&b.bi) {
			td.ResetLeft()
		}
		eob, err := td.DecodeBlock(&b.bi, nil, out)
		if err != nil {
			t.Fatalf("block %d: DecodeBlock error %s", i, err)
		}
		if eob != cf.eobs[i] {
			t.Fatalf("block %d: eob %d; want %d", i, eob, cf.eobs[i])
		}
		if diff := pretty.Diff(out, b.coeffs); len(diff) > 0 {
			t.Fatalf("block %d: coefficients differ: %v", i, diff)
		}
	}
	if err = td.Finish(); err != nil {
		t.Fatalf("tile Finish error %s", err)
	}
	if err = s.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}
	return f
}

func sameStores(t *testing.T, a, b *ContextStore) {
	p, err := a.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary error %s", err)
	}
	q, err := b.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary error %s", err)
	}
	if !bytes.Equal(p, q) {
		t.Fatal("encoder and decoder contexts differ")
	}
}

func TestFrameSequence(t *testing.T) {
	headers := []FrameHeader{
		{Type: KeyFrame, RefreshContext: true, TxMode: probs.TxModeSelect},
		{Type: InterFrame, ContextIndex: 1, RefreshContext: true,
			TxMode: probs.Allow16x16},
		{Type: InterFrame, ContextIndex: 0, RefreshContext: true,
			FrameParallel: true, TxMode: probs.Allow32x32},
		{Type: InterFrame, ContextIndex: 1, TxMode: probs.Only4x4},
		{Type: InterFrame, IntraOnly: true, ResetContext: ResetCurrent,
			ContextIndex: 2, RefreshContext: true,
			TxMode: probs.Allow8x8},
		{Type: InterFrame, ErrorResilient: true, RefreshContext: true,
			TxMode: probs.TxModeSelect},
		{Type: InterFrame, ContextIndex: 3, RefreshContext: true,
			TxMode: probs.TxModeSelect},
	}
	const cols, rows = 24, 17
	for _, bd := range []int{8, 10, 12} {
		cfg := Config{BitDepth: bd}
		es, err := NewContextStore(cfg)
		if err != nil {
			t.Fatalf("NewContextStore error %s", err)
		}
		ds, err := NewContextStore(cfg)
		if err != nil {
			t.Fatalf("NewContextStore error %s", err)
		}
		r := rand.New(rand.NewSource(int64(bd)))
		for i, h := range headers {
			blocks := tileBlocks(r, cols, rows, h.TxMode)
			cf := encodeFrame(t, es, h, blocks, cols, rows)
			f := decodeFrame(t, ds, h, cf, blocks, cols, rows)
			if f.Corrupted() {
				t.Fatalf("bd %d frame %d: corrupted", bd, i)
			}
			sameStores(t, es, ds)
		}
	}
}

func TestResetLeft(t *testing.T) {
	s, err := NewContextStore(Config{})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	h := FrameHeader{Type: KeyFrame, RefreshContext: true,
		TxMode: probs.TxModeSelect}
	f, err := s.BeginFrame(h)
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	te, err := f.NewTileEncoder(8, 40)
	if err != nil {
		t.Fatalf("NewTileEncoder error %s", err)
	}
	a := BlockInfo{Col: 3, Tx: scan.Tx4x4}
	c := make([]int32, 16)
	c[0] = 7
	if _, err = te.EncodeBlock(&a, c); err != nil {
		t.Fatalf("EncodeBlock error %s", err)
	}
	b := BlockInfo{Row: 16, Tx: scan.Tx4x4}
	if !te.StartsSuperblockRow(&b) {
		t.Fatalf("block %+v doesn't start a superblock row", b)
	}
	cb, err := te.block(&b)
	if err != nil {
		t.Fatalf("block error %s", err)
	}
	if cb.Ctx != 1 {
		t.Fatalf("context before ResetLeft %d; want 1", cb.Ctx)
	}
	te.ResetLeft()
	if cb, err = te.block(&b); err != nil {
		t.Fatalf("block error %s", err)
	}
	if cb.Ctx != 0 {
		t.Fatalf("context after ResetLeft %d; want 0", cb.Ctx)
	}
	if _, err = te.Finish(); err != nil {
		t.Fatalf("Finish error %s", err)
	}
	if err = s.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}

	// Encoder and decoder reset the left contexts at the same blocks.
	const cols, rows = 16, 72
	es, err := NewContextStore(Config{ChromaFormat: Chroma420})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	ds, err := NewContextStore(Config{ChromaFormat: Chroma420})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 3; i++ {
		blocks := tileBlocks(r, cols, rows, h.TxMode)
		cf := encodeFrame(t, es, h, blocks, cols, rows)
		fr := decodeFrame(t, ds, h, cf, blocks, cols, rows)
		if fr.Corrupted() {
			t.Fatalf("frame %d: corrupted", i)
		}
		sameStores(t, es, ds)
		h = FrameHeader{Type: InterFrame, ContextIndex: 1 + i,
			RefreshContext: true, TxMode: probs.TxModeSelect}
	}
}

func TestAdaptationChangesContext(t *testing.T) {
	s, err := NewContextStore(Config{})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	r := rand.New(rand.NewSource(3))
	h := FrameHeader{Type: KeyFrame, RefreshContext: true,
		TxMode: probs.Allow32x32}
	encodeFrame(t, s, h, tileBlocks(r, 16, 16, h.TxMode), 16, 16)
	if *s.Context(0) == *probs.NewDefault() {
		t.Fatal("refreshed context still has default probabilities")
	}
	if *s.Context(1) != *probs.NewDefault() {
		t.Fatal("context 1 has been modified")
	}
	if !s.lastWasKey {
		t.Fatal("key frame not recorded")
	}
}

func randomStore(t *testing.T, r *rand.Rand) *ContextStore {
	s, err := NewContextStore(Config{})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary error %s", err)
	}
	for i := range data {
		data[i] = byte(1 + r.Intn(255))
	}
	if err = s.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary error %s", err)
	}
	return s
}

func TestResetCurrent(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	s := randomStore(t, r)
	before := [FrameContexts]probs.Table{}
	for i := range before {
		before[i] = *s.Context(i)
	}
	f, err := s.BeginFrame(FrameHeader{
		Type:         InterFrame,
		IntraOnly:    true,
		ResetContext: ResetCurrent,
		ContextIndex: 2,
	})
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	if f.Header.ContextIndex != 0 {
		t.Fatalf("intra-only frame uses context %d; want 0",
			f.Header.ContextIndex)
	}
	if *f.Probs() != before[0] {
		t.Fatal("frame doesn't start with context 0")
	}
	for i := range before {
		want := before[i]
		if i == 2 {
			want = *probs.NewDefault()
		}
		if *s.Context(i) != want {
			t.Fatalf("context %d has unexpected probabilities", i)
		}
	}
	if err = s.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}
}

func TestResetAll(t *testing.T) {
	headers := []FrameHeader{
		{Type: KeyFrame, ContextIndex: 3},
		{Type: InterFrame, ErrorResilient: true, ContextIndex: 1},
		{Type: InterFrame, IntraOnly: true, ResetContext: ResetAll},
	}
	r := rand.New(rand.NewSource(5))
	for _, h := range headers {
		s := randomStore(t, r)
		f, err := s.BeginFrame(h)
		if err != nil {
			t.Fatalf("BeginFrame error %s", err)
		}
		for i := 0; i < FrameContexts; i++ {
			if *s.Context(i) != *probs.NewDefault() {
				t.Fatalf("%+v: context %d not reset", h, i)
			}
		}
		if f.Header.ContextIndex != 0 {
			t.Fatalf("%+v: context index %d", h, f.Header.ContextIndex)
		}
		if err = s.EndFrame(f); err != nil {
			t.Fatalf("EndFrame error %s", err)
		}
	}
}

func TestInterFrameKeepsContexts(t *testing.T) {
	r := rand.New(rand.NewSource(6))
	s := randomStore(t, r)
	want := *s.Context(2)
	f, err := s.BeginFrame(FrameHeader{Type: InterFrame,
		ResetContext: ResetAll, ContextIndex: 2})
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	if *f.Probs() != want {
		t.Fatal("inter frame didn't load its context")
	}
	if err = s.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}
	if *s.Context(2) != want {
		t.Fatal("context changed without refresh")
	}
}

func TestCorruptedFrameNotRefreshed(t *testing.T) {
	var logBuf bytes.Buffer
	cfg := Config{Logger: log.New(&logBuf, "", 0)}
	es, err := NewContextStore(cfg)
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	ds, err := NewContextStore(cfg)
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	r := rand.New(rand.NewSource(7))
	const cols, rows = 32, 32
	h := FrameHeader{Type: KeyFrame, RefreshContext: true,
		TxMode: probs.TxModeSelect}
	blocks := tileBlocks(r, cols, rows, h.TxMode)
	cf := encodeFrame(t, es, h, blocks, cols, rows)

	f, err := ds.BeginFrame(h)
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	hr, err := rc.NewDecoder(cf.header)
	if err != nil {
		t.Fatalf("rc.NewDecoder error %s", err)
	}
	f.ReadUpdates(hr)
	td, err := f.NewTileDecoder(cf.tile[:len(cf.tile)/3], cols, rows)
	if err != nil {
		t.Fatalf("NewTileDecoder error %s", err)
	}
	var sawErr bool
	for _, b := range blocks {
		out := make([]int32, b.bi.Tx.Len())
		_, err := td.DecodeBlock(&b.bi, &coef.Dequant{DC: 8, AC: 8}, out)
		if err != nil {
			if !errors.Is(err, ErrCorruptStream) &&
				!errors.Is(err, ErrRangeOverflow) {
				t.Fatalf("DecodeBlock error %s", err)
			}
			sawErr = true
		}
	}
	if !sawErr || !td.Corrupted() {
		t.Fatal("truncated tile not detected")
	}
	if err = td.Finish(); err != nil {
		t.Fatalf("Finish error %s", err)
	}
	if !f.Corrupted() {
		t.Fatal("frame doesn't inherit corrupted flag")
	}
	if err = ds.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}
	if *ds.Context(0) != *probs.NewDefault() {
		t.Fatal("corrupted frame refreshed its context")
	}
	if !strings.Contains(logBuf.String(), "doesn't refresh") {
		t.Fatalf("log output %q", logBuf.String())
	}
}

func TestFrameLifecycleErrors(t *testing.T) {
	s, err := NewContextStore(Config{})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	if _, err = s.BeginFrame(FrameHeader{ContextIndex: 4}); err == nil {
		t.Fatal("BeginFrame accepted context index 4")
	}
	f, err := s.BeginFrame(FrameHeader{TxMode: probs.Only4x4})
	if err != nil {
		t.Fatalf("BeginFrame error %s", err)
	}
	if _, err = s.BeginFrame(FrameHeader{}); err == nil {
		t.Fatal("BeginFrame accepted a second active frame")
	}
	te, err := f.NewTileEncoder(4, 4)
	if err != nil {
		t.Fatalf("NewTileEncoder error %s", err)
	}
	bi := BlockInfo{Tx: scan.Tx8x8}
	if _, err = te.EncodeBlock(&bi, make([]int32, 64)); err == nil {
		t.Fatal("EncodeBlock accepted 8x8 transform for ONLY_4X4")
	}
	bi = BlockInfo{Tx: scan.Tx4x4, Col: 4}
	if _, err = te.EncodeBlock(&bi, make([]int32, 16)); err == nil {
		t.Fatal("EncodeBlock accepted block outside the tile")
	}
	if _, err = te.Finish(); err != nil {
		t.Fatalf("Finish error %s", err)
	}
	if _, err = te.Finish(); err == nil {
		t.Fatal("second Finish succeeded")
	}
	if err = s.EndFrame(f); err != nil {
		t.Fatalf("EndFrame error %s", err)
	}
	if err = s.EndFrame(f); err == nil {
		t.Fatal("EndFrame accepted an inactive frame")
	}
}

func TestStoreMarshal(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	s := randomStore(t, r)
	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary error %s", err)
	}
	u, err := NewContextStore(Config{})
	if err != nil {
		t.Fatalf("NewContextStore error %s", err)
	}
	if err = u.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary error %s", err)
	}
	sameStores(t, s, u)

	data[100] = 0
	err = u.UnmarshalBinary(data)
	if !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("UnmarshalBinary returned %v; want %v", err,
			ErrInvalidProbability)
	}
}
