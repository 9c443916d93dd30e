// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package randcoef generates quantized coefficient blocks for tests. The
// blocks resemble the output of a quantizer: the magnitudes decay along
// the scan and most coefficients beyond the first positions are zero.
package randcoef

import (
	"math"
	"math/rand"
	"sort"

	"github.com/ulikunitz/vpx/scan"
)

// magnitudes is the cumulative distribution of the nonzero magnitudes
// 1..len(magnitudes). The weights follow a geometric decay.
var magnitudes []float64

func init() {
	const n = 96
	magnitudes = make([]float64, n)
	sum := 0.0
	for i := range magnitudes {
		sum += math.Pow(0.82, float64(i))
		magnitudes[i] = sum
	}
	for i := range magnitudes {
		magnitudes[i] /= sum
	}
}

// Source generates coefficient blocks.
type Source struct {
	rnd *rand.Rand
	// MaxMagnitude limits the magnitudes of the large outliers. If it
	// is zero outliers are not generated.
	MaxMagnitude int
	// Density is the probability of a nonzero coefficient at the start
	// of the scan. It decays towards the end of the block.
	Density float64
}

// NewSource returns a source using the random number source src.
func NewSource(src rand.Source) *Source {
	return &Source{
		rnd:          rand.New(src),
		MaxMagnitude: 16450,
		Density:      0.6,
	}
}

// Magnitude returns a random nonzero magnitude.
func (s *Source) Magnitude() int {
	if s.MaxMagnitude > 0 && s.rnd.Intn(50) == 0 {
		return 1 + s.rnd.Intn(s.MaxMagnitude)
	}
	p := s.rnd.Float64()
	return 1 + sort.SearchFloat64s(magnitudes, p)
}

// Block returns a block in raster order for the scan order o. The
// nonzero coefficients are placed within the first n scan positions.
func (s *Source) Block(o *scan.Order, n int) []int32 {
	c := make([]int32, len(o.Scan))
	if n > len(o.Scan) {
		n = len(o.Scan)
	}
	if n <= 0 {
		return c
	}
	last := s.rnd.Intn(n + 1)
	for pos := 0; pos < last; pos++ {
		d := s.Density * (1 - 0.8*float64(pos)/float64(n))
		if s.rnd.Float64() >= d {
			continue
		}
		v := int32(s.Magnitude())
		if s.rnd.Intn(2) == 0 {
			v = -v
		}
		c[o.Scan[pos]] = v
	}
	return c
}
