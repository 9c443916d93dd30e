// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package vpx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ulikunitz/vpx/internal/xlog"
	"github.com/ulikunitz/vpx/probs"
)

// FrameContexts is the number of persistent probability contexts.
const FrameContexts = 4

// FrameType distinguishes key frames from inter frames.
type FrameType uint8

// Frame types.
const (
	KeyFrame FrameType = iota
	InterFrame
)

// ResetMode controls the reset of the probability contexts by frames
// coded independently of previous frames.
type ResetMode uint8

// Reset modes.
const (
	ResetNone ResetMode = iota
	// ResetCurrent resets the context selected by the frame.
	ResetCurrent
	// ResetAll resets all contexts.
	ResetAll
)

// FrameHeader contains the frame parameters relevant to the entropy
// coding of the coefficients.
type FrameHeader struct {
	Type FrameType
	// IntraOnly marks inter frames using only intra prediction.
	IntraOnly bool
	// ErrorResilient frames reset all contexts and neither adapt nor
	// refresh probabilities.
	ErrorResilient bool
	// FrameParallel disables the adaptation of the probabilities at
	// the end of the frame.
	FrameParallel bool
	// ResetContext is only evaluated for intra-only frames.
	ResetContext ResetMode
	// ContextIndex selects the probability context.
	ContextIndex int
	// RefreshContext requests the context to be overwritten with the
	// final probabilities of the frame.
	RefreshContext bool
	// TxMode limits the transform sizes of the frame.
	TxMode probs.TxMode
}

// intraOnly reports whether the frame doesn't reference other frames.
func (h *FrameHeader) intraOnly() bool {
	return h.Type == KeyFrame || h.IntraOnly
}

// Verify checks the header for invalid values.
func (h *FrameHeader) Verify() error {
	if h == nil {
		return errors.New("vpx: frame header is nil")
	}
	if h.Type > InterFrame {
		return fmt.Errorf("vpx: invalid frame type %d", h.Type)
	}
	if h.ResetContext > ResetAll {
		return fmt.Errorf("vpx: invalid reset mode %d", h.ResetContext)
	}
	if !(0 <= h.ContextIndex && h.ContextIndex < FrameContexts) {
		return fmt.Errorf("vpx: context index %d out of range",
			h.ContextIndex)
	}
	if h.TxMode >= probs.TxModes {
		return fmt.Errorf("vpx: invalid transform mode %d", h.TxMode)
	}
	return nil
}

// ContextStore holds the persistent probability contexts of a stream and
// the state required to adapt them. Frames must be started and ended in
// stream order.
type ContextStore struct {
	cfg        Config
	slots      [FrameContexts]probs.Table
	lastWasKey bool
	active     *Frame
}

// NewContextStore creates the contexts for a stream. All contexts are
// initialized with the default probabilities.
func NewContextStore(cfg Config) (*ContextStore, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	s := &ContextStore{cfg: cfg}
	s.resetAll()
	return s, nil
}

// Config returns the verified configuration of the store.
func (s *ContextStore) Config() Config { return s.cfg }

func (s *ContextStore) resetAll() {
	for i := range s.slots {
		s.slots[i].Reset()
	}
}

// Context returns a copy of the probabilities stored in slot i.
func (s *ContextStore) Context(i int) *probs.Table {
	return s.slots[i].Snapshot()
}

// MarshalBinary stores all contexts. It implements the
// encoding.BinaryMarshaler interface.
func (s *ContextStore) MarshalBinary() (data []byte, err error) {
	for i := range s.slots {
		p, err := s.slots[i].MarshalBinary()
		if err != nil {
			return nil, err
		}
		data = append(data, p...)
	}
	return data, nil
}

// UnmarshalBinary restores the contexts written by MarshalBinary. It
// implements the encoding.BinaryUnmarshaler interface.
func (s *ContextStore) UnmarshalBinary(data []byte) error {
	if len(data)%FrameContexts != 0 {
		return errors.New("vpx: invalid length of context data")
	}
	n := len(data) / FrameContexts
	var slots [FrameContexts]probs.Table
	for i := range slots {
		if err := slots[i].UnmarshalBinary(data[i*n : (i+1)*n]); err != nil {
			return fmt.Errorf("vpx: context %d: %w", i, err)
		}
	}
	s.slots = slots
	return nil
}

// Frame is the entropy coding state of a single frame.
type Frame struct {
	Header FrameHeader

	store *ContextStore
	// probabilities used by the tiles
	probs *probs.Table
	// baseline loaded from the context
	pre *probs.Table

	mu        sync.Mutex
	counts    probs.Counts
	corrupted bool
}

// BeginFrame starts a frame. Key frames, error resilient frames and
// intra-only frames requesting a reset restore the default probabilities
// of the contexts; these frames always use context 0. The frame starts
// with a copy of its context.
func (s *ContextStore) BeginFrame(h FrameHeader) (*Frame, error) {
	if err := h.Verify(); err != nil {
		return nil, err
	}
	if s.active != nil {
		return nil, errors.New("vpx: previous frame not ended")
	}
	if h.ErrorResilient {
		h.RefreshContext = false
		h.FrameParallel = true
	}
	if h.intraOnly() || h.ErrorResilient {
		switch {
		case h.Type == KeyFrame || h.ErrorResilient ||
			h.ResetContext == ResetAll:
			s.resetAll()
			xlog.Printf(s.cfg.Logger, "vpx: reset all contexts")
		case h.ResetContext == ResetCurrent:
			s.slots[h.ContextIndex].Reset()
			xlog.Printf(s.cfg.Logger, "vpx: reset context %d",
				h.ContextIndex)
		}
		h.ContextIndex = 0
	}
	f := &Frame{
		Header: h,
		store:  s,
		pre:    s.slots[h.ContextIndex].Snapshot(),
	}
	f.probs = f.pre.Snapshot()
	s.active = f
	return f, nil
}

// Probs returns the probabilities of the frame. They include the
// differential updates once these have been read or written.
func (f *Frame) Probs() *probs.Table { return f.probs }

// Counts returns the token statistics of the tiles finished so far.
func (f *Frame) Counts() *probs.Counts {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.counts
	return &c
}

// ReadUpdates reads the differential probability updates from the
// compressed header. If the reader reports that it ran out of data the
// frame is marked corrupted.
func (f *Frame) ReadUpdates(r probs.Reader) {
	f.probs.ReadUpdates(r, f.Header.TxMode)
	if c, ok := r.(interface{ Corrupted() bool }); ok && c.Corrupted() {
		f.addTile(new(probs.Counts), true)
	}
}

// PlanUpdates returns the probabilities worth transmitting for tiles with
// the given token statistics. The statistics are usually collected by a
// dry run of the tile encoders.
func (f *Frame) PlanUpdates(c *probs.Counts) *probs.Table {
	return f.probs.Plan(c, f.Header.TxMode)
}

// WriteUpdates writes the differences to the target probabilities into
// the compressed header and applies them to the frame.
func (f *Frame) WriteUpdates(w probs.Writer, target *probs.Table) {
	f.probs.WriteUpdates(w, target, f.Header.TxMode)
}

// addTile merges the statistics of a finished tile.
func (f *Frame) addTile(c *probs.Counts, corrupted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts.Add(c)
	if corrupted {
		f.corrupted = true
	}
}

// Corrupted reports whether a tile of the frame was corrupted. A corrupted
// frame may be displayed but must not be used as reference.
func (f *Frame) Corrupted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.corrupted
}

// EndFrame finishes the frame. Unless the frame is error resilient or
// parallel decodable the probabilities are adapted to the statistics of
// the frame. If the header requests it and the frame is not corrupted the
// context is refreshed. All tiles must be finished before.
func (s *ContextStore) EndFrame(f *Frame) error {
	if f == nil || f != s.active {
		return errors.New("vpx: frame is not active")
	}
	s.active = nil
	h := &f.Header
	if !h.ErrorResilient && !h.FrameParallel {
		f.probs.Adapt(f.pre, &f.counts,
			probs.UpdateFactor(h.intraOnly(), s.lastWasKey))
	}
	s.lastWasKey = h.Type == KeyFrame
	if err := f.probs.Validate(); err != nil {
		return err
	}
	if !h.RefreshContext {
		return nil
	}
	if f.Corrupted() {
		xlog.Printf(s.cfg.Logger,
			"vpx: corrupted frame doesn't refresh context %d",
			h.ContextIndex)
		return nil
	}
	s.slots[h.ContextIndex] = *f.probs
	xlog.Printf(s.cfg.Logger, "vpx: refreshed context %d", h.ContextIndex)
	return nil
}
