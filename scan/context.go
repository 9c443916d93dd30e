// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package scan

// Context returns the context for scan position pos > 0. The token cache
// contains the energy classes of the tokens already coded, indexed by
// coefficient position. The function doesn't modify any state.
func (o *Order) Context(cache []uint8, pos int) int {
	a := o.Neighbors[2*pos]
	b := o.Neighbors[2*pos+1]
	return (1 + int(cache[a]) + int(cache[b])) >> 1
}

// CombineEntropyContexts returns the context of the first scan position
// from the nonzero flags of the blocks above and to the left.
func CombineEntropyContexts(above, left bool) int {
	c := 0
	if above {
		c++
	}
	if left {
		c++
	}
	return c
}

// Planes is the number of planes with separate entropy contexts.
const Planes = 3

// SuperblockUnits is the height of a luma superblock in 4x4 units.
const SuperblockUnits = 16

// EntropyContext holds the above and left nonzero flags of a tile in 4x4
// units. The above arrays span the width of the tile, the left arrays a
// single row of superblocks. The flag of a unit is set if the last
// transform block covering it had a nonzero end-of-block position.
type EntropyContext struct {
	above [Planes][]uint8
	left  [Planes][]uint8
	// visible size of each plane in 4x4 units
	cols [Planes]int
	rows [Planes]int
	// superblock height of each plane in 4x4 units
	sbRows [Planes]int
}

// NewEntropyContext creates the context arrays for a tile. The arrays of
// the chroma planes are reduced by the given subsampling shifts.
func NewEntropyContext(cols, rows int, ssx, ssy uint) *EntropyContext {
	c := new(EntropyContext)
	for p := 0; p < Planes; p++ {
		w, h, sb := cols, rows, SuperblockUnits
		if p > 0 {
			w = (cols + 1<<ssx - 1) >> ssx
			h = (rows + 1<<ssy - 1) >> ssy
			sb >>= ssy
		}
		c.cols[p], c.rows[p], c.sbRows[p] = w, h, sb
		// A transform may extend beyond the visible area by up to
		// seven units.
		c.above[p] = make([]uint8, w+Tx32x32.Units())
		c.left[p] = make([]uint8, SuperblockUnits+Tx32x32.Units())
	}
	return c
}

// Reset clears all flags. It has to be called at the start of a tile.
func (c *EntropyContext) Reset() {
	for p := 0; p < Planes; p++ {
		clear8(c.above[p])
		clear8(c.left[p])
	}
}

// ResetLeft clears the left flags of all planes. It has to be called at the
// start of every row of superblocks.
func (c *EntropyContext) ResetLeft() {
	for p := 0; p < Planes; p++ {
		clear8(c.left[p])
	}
}

func clear8(s []uint8) {
	for i := range s {
		s[i] = 0
	}
}

func any8(s []uint8) bool {
	for _, x := range s {
		if x != 0 {
			return true
		}
	}
	return false
}

// Get returns the context of the first scan position of a transform block
// at column col and row row, given in 4x4 units of the plane. Larger
// transforms combine the flags of all units they cover.
func (c *EntropyContext) Get(plane int, tx TxSize, col, row int) int {
	n := tx.Units()
	r := row % c.sbRows[plane]
	return CombineEntropyContexts(
		any8(c.above[plane][col:col+n]),
		any8(c.left[plane][r:r+n]))
}

// Set records the result of a transform block. Units outside of the
// visible plane are always cleared.
func (c *EntropyContext) Set(plane int, tx TxSize, col, row int, nonzero bool) {
	n := tx.Units()
	set := func(s []uint8, i0, start, limit int) {
		for i := 0; i < n; i++ {
			var v uint8
			if nonzero && start+i < limit {
				v = 1
			}
			s[i0+i] = v
		}
	}
	set(c.above[plane], col, col, c.cols[plane])
	set(c.left[plane], row%c.sbRows[plane], row, c.rows[plane])
}

// StartsSuperblockRow reports whether a block at col and row of the plane
// is the first block of a row of superblocks. ResetLeft must be called
// before such a block is coded.
func (c *EntropyContext) StartsSuperblockRow(plane, col, row int) bool {
	return col == 0 && row%c.sbRows[plane] == 0
}

// Cols returns the width of the plane in 4x4 units.
func (c *EntropyContext) Cols(plane int) int { return c.cols[plane] }

// Rows returns the height of the plane in 4x4 units.
func (c *EntropyContext) Rows(plane int) int { return c.rows[plane] }
