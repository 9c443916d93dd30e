// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package scan

const (
	// Bands is the number of coefficient bands.
	Bands = 6
	// Contexts is the maximum number of contexts in a band.
	Contexts = 6
)

var band4x4 = [16]uint8{0, 1, 1, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 5, 5, 5}

// band8x8Plus is shared by the transform sizes 8x8 to 32x32. Positions
// beyond the initializer are in band 5.
var band8x8Plus [1024]uint8

func init() {
	n := copy(band8x8Plus[:], []uint8{
		0, 1, 1, 2, 2, 2, 3, 3, 3, 3,
		4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4})
	for i := n; i < len(band8x8Plus); i++ {
		band8x8Plus[i] = 5
	}
}

// BandTable returns the band of every scan position of the transform size.
func BandTable(tx TxSize) []uint8 {
	if tx == Tx4x4 {
		return band4x4[:]
	}
	return band8x8Plus[:tx.Len()]
}

// Band returns the band of the scan position.
func Band(tx TxSize, pos int) int {
	return int(BandTable(tx)[pos])
}

// BandContexts returns the number of contexts used in the band. The DC band
// only knows the three contexts derived from the neighbouring blocks.
func BandContexts(band int) int {
	if band == 0 {
		return 3
	}
	return Contexts
}
