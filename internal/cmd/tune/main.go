// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command tune measures the coded size of the Silesia corpus for different
// coder options and selects the fastest options for a set of ratio slots.
//
// The corpus bytes are turned into 4x4 units of 16 coefficient levels.
// The ratio c/u is the number of coded bytes, header updates and tile
// data, per 16 level bytes of a unit. An option is assigned to the
// smallest slot value its ratio doesn't exceed; per slot the option with
// the highest block throughput is selected. The ratio e/t compares the
// tile size estimated by the counting encoder with the real tile size.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/kr/pretty"

	"github.com/ulikunitz/vpx/internal/tuning"
	"github.com/ulikunitz/vpx/scan"
)

type preset struct {
	present bool
	o       tuning.Options
	result  testing.BenchmarkResult
}

// mBlocksPerSec returns the throughput in million transform blocks per
// second. The benchmarks report the number of blocks as bytes, so the MB/s
// value of the testing package counts blocks, not bytes.
func mBlocksPerSec(r testing.BenchmarkResult) float64 {
	if v, ok := r.Extra["MB/s"]; ok {
		return v
	}
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

func ratio(r testing.BenchmarkResult) float64 {
	if x, ok := r.Extra["c/u"]; ok {
		return x
	}
	return math.NaN()
}

// Returns the slot index the ratio qualifies for. The slots are sorted in
// descending order; the ratio qualifies for the last slot it doesn't
// exceed. If the ratio exceeds all slots ok will be false.
func slot(slots []float64, ratio float64) (i int, ok bool) {
	for i, r := range slots {
		if ratio > r {
			return i - 1, i > 0
		}
	}
	return len(slots) - 1, true
}

func disable(o *tuning.Options) { o.KeyInterval = -1 }

func disabled(o *tuning.Options) bool { return o.KeyInterval < 0 }

// worse reports whether a cannot produce a better ratio than b. Disabling
// updates or adaptation never improves the ratio.
func worse(a, b *tuning.Options) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.Tx != b.Tx || a.KeyInterval != b.KeyInterval {
		return false
	}
	if a.Cols != b.Cols || a.Rows != b.Rows {
		return false
	}
	return (a.NoUpdates || !b.NoUpdates) &&
		(a.FrameParallel || !b.FrameParallel)
}

func findPresets(slots []float64, options []tuning.Options, verbose bool) {
	if len(slots) == 0 {
		log.Fatalf("no slots defined")
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i] > slots[j]
	})
	fmt.Printf("slots %.3f\n", slots)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	presets := make([]preset, len(slots))

	i := 0
	n := len(options)
	for len(options) > 0 {
		k := len(options) - 1
		o := options[k]
		options = options[:k]
		if disabled(&o) {
			continue
		}
		n--

		i++
		result := testing.Benchmark(encoderBenchmark(o))
		fmt.Printf("%d-%d %s\n", i, n, result)
		si, ok := slot(slots, ratio(result))
		if !ok {
			for i := range options {
				p := &options[i]
				if disabled(p) {
					continue
				}
				if worse(p, &o) {
					disable(p)
					n--
				}
			}
			continue
		}
		v := mBlocksPerSec(result)
		p := presets[si]
		if p.present && v <= mBlocksPerSec(p.result) {
			fmt.Printf("slot %d - not faster\n", si+1)
			continue
		}
		presets[si] = preset{
			present: true,
			o:       o,
			result:  result,
		}
		fmt.Printf("slot %d - update\n", si+1)
		if verbose {
			pretty.Println(o)
		}
	}

	fmt.Printf("\n\n### Result ###\n\n")

	for si, p := range presets {
		if si > 0 {
			fmt.Printf("\n")
		}
		if !p.present {
			fmt.Printf("slot %d - not present\n", si+1)
			continue
		}
		fmt.Printf("slot %d - \t%.3f c/u\t%.3f e/t\t%.2f Mblocks/s\n",
			si+1, ratio(p.result), p.result.Extra["e/t"],
			mBlocksPerSec(p.result))
		pretty.Println(p.o)
	}
}

func appendOptions(x []tuning.Options) (y []tuning.Options) {
	y = x
	for tx := scan.Tx4x4; tx < scan.TxSizes; tx++ {
		for _, keyInterval := range []int{1, 4, 16, 64} {
			for flags := 0; flags < 4; flags++ {
				o := tuning.Options{
					Tx:            tx,
					KeyInterval:   keyInterval,
					NoUpdates:     flags&1 != 0,
					FrameParallel: flags&2 != 0,
				}
				o.ApplyDefaults()
				y = append(y, o)
			}
		}
	}
	return y
}

func main() {
	testing.Init()
	verbose := flag.Bool("v", false, "print every slot update")
	flag.Parse()
	options := appendOptions(nil)

	slots := []float64{0.06, 0.05, 0.04, 0.03, 0.02}
	findPresets(slots, options, *verbose)
}
