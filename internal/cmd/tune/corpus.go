// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ulikunitz/zdata"

	"github.com/ulikunitz/vpx/internal/tuning"
)

var (
	_silesiaFiles []tuning.File
	silesiaOnce   sync.Once
)

// maxFrames limits the frames per corpus file to keep a benchmark
// iteration short.
const maxFrames = 32

func silesiaFiles() []tuning.File {
	silesiaOnce.Do(func() {
		var err error
		_silesiaFiles, err = tuning.Files(zdata.Silesia)
		if err != nil {
			panic(fmt.Errorf("silesiaFiles() error %w", err))
		}
	})
	return _silesiaFiles
}

// codedRatio returns the ratio of coded size to the number of coefficient
// bytes taken from the corpus. Every 4x4 unit of a frame consumes 16 bytes.
func codedRatio(r tuning.Result, o *tuning.Options) float64 {
	n := int64(r.Frames) * int64(o.Cols*o.Rows) * 16
	if n == 0 {
		return 0
	}
	return float64(r.CodedSize()) / float64(n)
}

// estimateRatio returns the ratio of the tile size estimated by the
// counting encoders to the real tile size. It returns zero if no estimate
// is available.
func estimateRatio(r tuning.Result) float64 {
	if r.EstimatedSize == 0 || r.TileSize == 0 {
		return 0
	}
	return float64(r.EstimatedSize) / float64(r.TileSize)
}

func encoderBenchmark(o tuning.Options) func(b *testing.B) {
	return func(b *testing.B) {
		files := silesiaFiles()
		o.MaxFrames = maxFrames
		if err := o.Verify(); err != nil {
			b.Fatalf("Verify error %s", err)
		}
		var (
			err    error
			result tuning.Result
		)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			result, err = tuning.CodedSize(files, o)
			if err != nil {
				b.Fatalf("CodedSize error %s", err)
			}
		}
		b.StopTimer()
		b.SetBytes(int64(result.Blocks))
		b.ReportMetric(codedRatio(result, &o), "c/u")
		b.ReportMetric(estimateRatio(result), "e/t")
	}
}
