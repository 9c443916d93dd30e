// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"testing"
	"time"

	"github.com/ulikunitz/vpx/internal/tuning"
	"github.com/ulikunitz/vpx/scan"
)

func TestCodedRatio(t *testing.T) {
	o := tuning.Options{Cols: 2, Rows: 2}
	r := tuning.Result{Frames: 2, HeaderSize: 16, TileSize: 48}
	if g := codedRatio(r, &o); g != 0.5 {
		t.Fatalf("got %g; want %g", g, 0.5)
	}
	if g := codedRatio(tuning.Result{}, &o); g != 0 {
		t.Fatalf("got %g for empty result; want 0", g)
	}
}

func TestEstimateRatio(t *testing.T) {
	r := tuning.Result{TileSize: 40, EstimatedSize: 50}
	if g := estimateRatio(r); g != 1.25 {
		t.Fatalf("got %g; want %g", g, 1.25)
	}
	if g := estimateRatio(tuning.Result{TileSize: 40}); g != 0 {
		t.Fatalf("got %g without estimate; want 0", g)
	}
}

func TestMBlocksPerSec(t *testing.T) {
	r := testing.BenchmarkResult{N: 4, T: 2 * time.Second,
		Bytes: 1000000}
	if g := mBlocksPerSec(r); g != 2 {
		t.Fatalf("got %g; want %g", g, 2.0)
	}
	if g := mBlocksPerSec(testing.BenchmarkResult{}); g != 0 {
		t.Fatalf("got %g for empty result; want 0", g)
	}
}

func TestSlot(t *testing.T) {
	slots := []float64{0.3, 0.2, 0.1}
	tests := []struct {
		ratio float64
		i     int
		ok    bool
	}{
		{0.35, -1, false},
		{0.25, 0, true},
		{0.15, 1, true},
		{0.05, 2, true},
	}
	for _, tc := range tests {
		i, ok := slot(slots, tc.ratio)
		if i != tc.i || ok != tc.ok {
			t.Fatalf("slot(%g) = %d, %t; want %d, %t",
				tc.ratio, i, ok, tc.i, tc.ok)
		}
	}
}

func TestWorse(t *testing.T) {
	a := tuning.Options{Tx: scan.Tx8x8, NoUpdates: true}
	b := tuning.Options{Tx: scan.Tx8x8}
	if !worse(&a, &b) {
		t.Fatal("configuration without updates not worse")
	}
	if worse(&b, &a) {
		t.Fatal("configuration with updates worse")
	}
	c := tuning.Options{Tx: scan.Tx16x16}
	if worse(&a, &c) {
		t.Fatal("different transform sizes compared")
	}
}

func BenchmarkRatio(b *testing.B) {
	configs := []struct {
		name string
		o    tuning.Options
	}{
		{"4x4", tuning.Options{Tx: scan.Tx4x4}},
		{"8x8", tuning.Options{Tx: scan.Tx8x8}},
		{"16x16", tuning.Options{Tx: scan.Tx16x16}},
		{"32x32", tuning.Options{Tx: scan.Tx32x32}},
		{"8x8-no-updates", tuning.Options{Tx: scan.Tx8x8,
			NoUpdates: true}},
		{"8x8-parallel", tuning.Options{Tx: scan.Tx8x8,
			FrameParallel: true}},
	}
	for _, c := range configs {
		b.Run(c.name, encoderBenchmark(c.o))
	}
}
