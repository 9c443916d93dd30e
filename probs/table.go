// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package probs maintains the adaptive probabilities of the coefficient
// token trees. A Table holds the probabilities of the unconstrained tree
// nodes for every transform size, plane type, reference type, band and
// context. The package provides the default table, the accumulation of
// token counts, the forward adaptation at the end of a frame and the
// differential update protocol that transmits probability changes in the
// frame header.
package probs

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/vpx/rc"
	"github.com/ulikunitz/vpx/scan"
	"github.com/ulikunitz/vpx/token"
)

// PlaneType distinguishes luma from chroma blocks.
type PlaneType uint8

// Plane types.
const (
	Y PlaneType = iota
	UV

	// PlaneTypes is the number of plane types.
	PlaneTypes = 2
)

// RefType distinguishes intra from inter predicted blocks.
type RefType uint8

// Reference types.
const (
	Intra RefType = iota
	Inter

	// RefTypes is the number of reference types.
	RefTypes = 2
)

// Dimensions of the table shared with the context model.
const (
	TxSizes  = scan.TxSizes
	Bands    = scan.Bands
	Contexts = scan.Contexts
)

// BlockProbs are the node probabilities used by a single transform block.
type BlockProbs [Bands][Contexts]token.NodeProbs

// Table contains the coefficient probabilities of a frame context.
type Table struct {
	Coef [TxSizes][PlaneTypes][RefTypes]BlockProbs
}

// ErrInvalidProbability indicates a probability outside of [1,255].
var ErrInvalidProbability = errors.New("probs: invalid probability")

// NewDefault returns a table initialized with the default probabilities.
func NewDefault() *Table {
	t := new(Table)
	t.Reset()
	return t
}

// Reset sets all probabilities to their defaults.
func (t *Table) Reset() {
	t.Coef = defaultCoef
}

// Block returns the probabilities for blocks of the given transform size,
// plane type and reference type.
func (t *Table) Block(tx scan.TxSize, plane PlaneType, ref RefType) *BlockProbs {
	return &t.Coef[tx][plane][ref]
}

// Snapshot returns a copy of the table. The copy serves as the baseline
// for the differential updates and the adaptation of a frame.
func (t *Table) Snapshot() *Table {
	s := *t
	return &s
}

// Restore overwrites the table with the snapshot s.
func (t *Table) Restore(s *Table) {
	*t = *s
}

// each calls f for every valid band and context of the table. Band 0 has
// only three contexts; the other entries are never used.
func (t *Table) each(f func(tx scan.TxSize, plane PlaneType, ref RefType,
	band, ctx int, p *token.NodeProbs)) {
	for tx := scan.TxSize(0); tx < TxSizes; tx++ {
		for plane := PlaneType(0); plane < PlaneTypes; plane++ {
			for ref := RefType(0); ref < RefTypes; ref++ {
				b := &t.Coef[tx][plane][ref]
				for band := 0; band < Bands; band++ {
					for ctx := 0; ctx < scan.BandContexts(band); ctx++ {
						f(tx, plane, ref, band, ctx, &b[band][ctx])
					}
				}
			}
		}
	}
}

// Validate checks that all probabilities are in the range [1,255].
func (t *Table) Validate() error {
	var err error
	t.each(func(tx scan.TxSize, plane PlaneType, ref RefType,
		band, ctx int, p *token.NodeProbs) {
		if err != nil {
			return
		}
		for node, q := range p {
			if !q.Valid() {
				err = fmt.Errorf(
					"%w: tx %s plane %d ref %d band %d ctx %d node %d",
					ErrInvalidProbability, tx, plane, ref, band,
					ctx, node)
				return
			}
		}
	})
	return err
}

// tableLen is the length of the binary representation of a table.
const tableLen = TxSizes * PlaneTypes * RefTypes * Bands * Contexts *
	token.UnconstrainedNodes

// MarshalBinary returns all probabilities in index order. It implements
// encoding.BinaryMarshaler.
func (t *Table) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 0, tableLen)
	for tx := range t.Coef {
		for plane := range t.Coef[tx] {
			for ref := range t.Coef[tx][plane] {
				b := &t.Coef[tx][plane][ref]
				for band := range b {
					for ctx := range b[band] {
						for _, q := range b[band][ctx] {
							data = append(data, byte(q))
						}
					}
				}
			}
		}
	}
	return data, nil
}

// UnmarshalBinary restores a table written by MarshalBinary. Zero
// probabilities are rejected with ErrInvalidProbability; the table is not
// modified in that case.
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) != tableLen {
		return fmt.Errorf("probs: table has length %d; want %d",
			len(data), tableLen)
	}
	for i, c := range data {
		if c == 0 {
			return fmt.Errorf("%w: zero at offset %d",
				ErrInvalidProbability, i)
		}
	}
	for tx := range t.Coef {
		for plane := range t.Coef[tx] {
			for ref := range t.Coef[tx][plane] {
				b := &t.Coef[tx][plane][ref]
				for band := range b {
					for ctx := range b[band] {
						for node := range b[band][ctx] {
							b[band][ctx][node] = rc.Prob(data[0])
							data = data[1:]
						}
					}
				}
			}
		}
	}
	return nil
}
