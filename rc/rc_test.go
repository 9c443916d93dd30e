// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

type boolProb struct {
	bit bool
	p   Prob
}

func randomSequence(r *rand.Rand, n int) []boolProb {
	seq := make([]boolProb, n)
	for i := range seq {
		seq[i] = boolProb{bit: r.Intn(2) == 1, p: Prob(1 + r.Intn(255))}
	}
	return seq
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		seq := randomSequence(r, r.Intn(3000))
		e := NewEncoder(nil)
		for _, x := range seq {
			e.WriteBool(x.bit, x.p)
		}
		n := e.Finish()
		if n != len(e.Bytes()) {
			t.Fatalf("Finish returned %d; want %d", n, len(e.Bytes()))
		}
		d, err := NewDecoder(e.Bytes())
		if err != nil {
			t.Fatalf("NewDecoder error %s", err)
		}
		for k, x := range seq {
			if b := d.ReadBool(x.p); b != x.bit {
				t.Fatalf("sequence %d: bit %d is %t; want %t",
					i, k, b, x.bit)
			}
		}
		if d.Corrupted() {
			t.Fatalf("sequence %d: decoder reports corruption", i)
		}
	}
}

func TestSkewedProbabilities(t *testing.T) {
	// Long runs against extreme probabilities exercise the carry path.
	e := NewEncoder(nil)
	const n = 20000
	for i := 0; i < n; i++ {
		e.WriteBool(true, 255)
		e.WriteBool(false, 1)
	}
	e.Finish()
	d, err := NewDecoder(e.Bytes())
	if err != nil {
		t.Fatalf("NewDecoder error %s", err)
	}
	for i := 0; i < n; i++ {
		if !d.ReadBool(255) || d.ReadBool(1) {
			t.Fatalf("pair %d decoded incorrectly", i)
		}
	}
	if d.Corrupted() {
		t.Fatal("decoder reports corruption")
	}
}

func TestFixture(t *testing.T) {
	seq := []boolProb{
		{true, 1}, {false, 255}, {true, 128}, {true, 200},
		{false, 3}, {true, 77}, {false, 128}, {true, 254},
	}
	e := NewEncoder(make([]byte, 0, 16))
	for _, x := range seq {
		e.WriteBool(x.bit, x.p)
	}
	e.WriteLiteral(0x2a5, 10)
	e.Finish()
	want := []byte{0x71, 0xdf, 0x2a, 0x50, 0x00}
	if !bytes.Equal(e.Bytes(), want) {
		t.Fatalf("encoded % x; want % x", e.Bytes(), want)
	}
	d, err := NewDecoder(want)
	if err != nil {
		t.Fatalf("NewDecoder error %s", err)
	}
	for k, x := range seq {
		if b := d.ReadBool(x.p); b != x.bit {
			t.Fatalf("bit %d is %t; want %t", k, b, x.bit)
		}
	}
	if v := d.ReadLiteral(10); v != 0x2a5 {
		t.Fatalf("ReadLiteral returned %#x; want %#x", v, 0x2a5)
	}
}

func TestEmptyStream(t *testing.T) {
	e := NewEncoder(nil)
	e.Finish()
	if want := []byte{0, 0}; !bytes.Equal(e.Bytes(), want) {
		t.Fatalf("empty stream % x; want % x", e.Bytes(), want)
	}

	d, err := NewDecoder(nil)
	if err != nil {
		t.Fatalf("NewDecoder(nil) error %s", err)
	}
	if !d.Corrupted() {
		t.Fatal("decoder on empty input is not corrupted")
	}
	// The decoder must continue to deliver deterministic zeros.
	for i := 0; i < 100000; i++ {
		if d.ReadBool(128) {
			t.Fatalf("bit %d is true on exhausted input", i)
		}
	}
}

func TestTruncated(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	seq := randomSequence(r, 400)
	e := NewEncoder(nil)
	for _, x := range seq {
		e.WriteBool(x.bit, x.p)
	}
	e.Finish()
	buf := e.Bytes()
	d, err := NewDecoder(buf[:len(buf)/2])
	if err != nil {
		t.Fatalf("NewDecoder error %s", err)
	}
	for _, x := range seq {
		d.ReadBool(x.p)
	}
	if !d.Corrupted() {
		t.Fatal("truncated stream not reported as corrupted")
	}
}

func TestMarker(t *testing.T) {
	_, err := NewDecoder([]byte{0xff, 0xff})
	if !errors.Is(err, ErrMarker) {
		t.Fatalf("NewDecoder error %v; want %v", err, ErrMarker)
	}
	var d Decoder
	if err = d.Init([]byte{0x80}); err == nil {
		t.Fatal("Init accepted a stream with marker bit set")
	}
	if !d.Corrupted() {
		t.Fatal("decoder with bad marker is not corrupted")
	}
}

func TestLiteral(t *testing.T) {
	values := []struct {
		v uint32
		n int
	}{{0, 1}, {1, 1}, {5, 3}, {0xffff, 16}, {12345, 18}, {0, 0}}
	e := NewEncoder(nil)
	for _, x := range values {
		e.WriteLiteral(x.v, x.n)
	}
	e.Finish()
	d, err := NewDecoder(e.Bytes())
	if err != nil {
		t.Fatalf("NewDecoder error %s", err)
	}
	for _, x := range values {
		if v := d.ReadLiteral(x.n); v != x.v {
			t.Fatalf("ReadLiteral(%d) returned %d; want %d",
				x.n, v, x.v)
		}
	}
}

func TestMarkerGuard(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		e := NewEncoder(nil)
		for _, x := range randomSequence(r, r.Intn(64)) {
			e.WriteBool(x.bit, x.p)
		}
		e.Finish()
		b := e.Bytes()
		if b[len(b)-1]&0xe0 == 0xc0 {
			t.Fatalf("stream ends with marker-like byte %#02x",
				b[len(b)-1])
		}
	}
}

func TestDebugOutput(t *testing.T) {
	var sb strings.Builder
	debugOn(&sb)
	defer debugOff()
	e := NewEncoder(nil)
	e.WriteBool(true, 17)
	e.Finish()
	if !strings.Contains(sb.String(), "rc: W") {
		t.Fatalf("no trace output: %q", sb.String())
	}
}

func TestClipProb(t *testing.T) {
	tests := []struct {
		v    int
		want Prob
	}{{-3, 1}, {0, 1}, {1, 1}, {128, 128}, {255, 255}, {256, 255}}
	for _, tc := range tests {
		if p := ClipProb(tc.v); p != tc.want {
			t.Errorf("ClipProb(%d) = %d; want %d", tc.v, p, tc.want)
		}
	}
}

func TestCost(t *testing.T) {
	if c := Cost(false, HalfProb); c != 256 {
		t.Fatalf("Cost(false, 128) = %d; want 256", c)
	}
	if c := Cost(true, 192); c != 512 {
		t.Fatalf("Cost(true, 192) = %d; want 512", c)
	}
	for p := 1; p < 255; p++ {
		if Cost(false, Prob(p)) < Cost(false, Prob(p+1)) {
			t.Fatalf("cost of zero bit increases at %d", p)
		}
	}
}
