// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package scan provides the coefficient context model: the scan orders of
// the transform sizes, the neighbour tables derived from them, the band
// classification of scan positions and the computation of the coefficient
// contexts.
//
// All tables are constant after package initialization and may be shared
// between goroutines.
package scan

import "fmt"

// TxSize is the size of a square transform.
type TxSize uint8

// Transform sizes.
const (
	Tx4x4 TxSize = iota
	Tx8x8
	Tx16x16
	Tx32x32

	// TxSizes is the number of transform sizes.
	TxSizes = 4
)

// String returns a description of the transform size.
func (t TxSize) String() string {
	if t < TxSizes {
		s := t.Size()
		return fmt.Sprintf("%dx%d", s, s)
	}
	return fmt.Sprintf("TxSize(%d)", uint8(t))
}

// Size returns the width of the transform in samples.
func (t TxSize) Size() int { return 4 << t }

// Len returns the number of coefficients of the transform.
func (t TxSize) Len() int { return 16 << (2 * t) }

// Units returns the width of the transform in 4x4 units.
func (t TxSize) Units() int { return 1 << t }

// TxType selects the vertical and horizontal one-dimensional transforms.
type TxType uint8

// Transform types; the first name is the vertical transform.
const (
	DCTDCT TxType = iota
	ADSTDCT
	DCTADST
	ADSTADST

	// TxTypes is the number of transform types.
	TxTypes = 4
)

// Kind identifies a scan order family.
type Kind uint8

// Scan order families.
const (
	Default Kind = iota
	Row
	Col
)

// Order is a scan order together with its neighbour table.
type Order struct {
	Kind Kind
	// Scan maps scan positions to coefficient positions.
	Scan []int16
	// Neighbors contains two coefficient positions per scan position
	// whose tokens determine the context. A padding pair follows the last
	// position.
	Neighbors []int16
}

var orders [TxSizes][3]Order

// kindOf maps transform types to scan families. Vertical ADST uses the row
// scan.
var kindOf = [TxTypes]Kind{Default, Row, Col, Default}

// Get returns the scan order for the transform size and type. The 32x32
// transform supports only DCTDCT and always uses the default order.
func Get(tx TxSize, txType TxType) *Order {
	if tx == Tx32x32 {
		return &orders[tx][Default]
	}
	return &orders[tx][kindOf[txType]]
}

// GetKind returns the scan order of the given family. The 32x32 transform
// returns the default order for all families.
func GetKind(tx TxSize, k Kind) *Order {
	return &orders[tx][k]
}

var scans = [TxSizes][3][]int16{
	{defaultScan4x4[:], rowScan4x4[:], colScan4x4[:]},
	{defaultScan8x8[:], rowScan8x8[:], colScan8x8[:]},
	{defaultScan16x16[:], rowScan16x16[:], colScan16x16[:]},
	{defaultScan32x32[:]},
}

func init() {
	for tx := Tx4x4; tx < TxSizes; tx++ {
		for _, k := range []Kind{Default, Row, Col} {
			s := scans[tx][k]
			if s == nil {
				orders[tx][k] = orders[tx][Default]
				continue
			}
			orders[tx][k] = Order{
				Kind:      k,
				Scan:      s,
				Neighbors: neighbors(s, tx.Size(), k),
			}
		}
	}
}

// neighbors computes the neighbour table for a scan. Inside the block the
// row scan uses only the left and the column scan only the upper
// neighbour; the default scan uses both. Positions in the first row or
// column use the single neighbour available.
func neighbors(s []int16, n int, k Kind) []int16 {
	nb := make([]int16, 2*(len(s)+1))
	for p := 1; p < len(s); p++ {
		rc := int(s[p])
		i, j := rc/n, rc%n
		var a, b int
		switch {
		case i > 0 && j > 0:
			above, left := (i-1)*n+j, i*n+j-1
			switch k {
			case Row:
				a, b = left, left
			case Col:
				a, b = above, above
			default:
				a, b = above, left
			}
		case i > 0:
			a = (i-1)*n + j
			b = a
		default:
			a = i*n + j - 1
			b = a
		}
		nb[2*p] = int16(a)
		nb[2*p+1] = int16(b)
	}
	return nb
}
