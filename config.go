// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package vpx

import (
	"errors"
	"fmt"

	"github.com/ulikunitz/vpx/internal/xlog"
	"github.com/ulikunitz/vpx/token"
)

// ChromaFormat defines the subsampling of the chroma planes.
type ChromaFormat uint8

// Chroma formats. The zero value is the most common 4:2:0 format.
const (
	Chroma420 ChromaFormat = iota
	Chroma422
	Chroma440
	Chroma444
)

// Subsampling returns the horizontal and vertical subsampling shifts.
func (f ChromaFormat) Subsampling() (ssx, ssy uint) {
	switch f {
	case Chroma420:
		return 1, 1
	case Chroma422:
		return 1, 0
	case Chroma440:
		return 0, 1
	}
	return 0, 0
}

// Config describes the parameters shared by the frames of a stream.
type Config struct {
	// BitDepth of the samples: 8, 10 or 12 (default: 8)
	BitDepth int

	// ChromaFormat of the chroma planes (default: 4:2:0)
	ChromaFormat ChromaFormat

	// Logger receives reports about context resets, refreshes and
	// corrupted tiles. A *log.Logger can be used. (default: no output)
	Logger xlog.Logger
}

// ApplyDefaults replaces zero values by their defaults.
func (c *Config) ApplyDefaults() {
	if c.BitDepth == 0 {
		c.BitDepth = 8
	}
}

// Verify checks the configuration for errors. Zero values will be
// replaced by default values.
func (c *Config) Verify() error {
	if c == nil {
		return errors.New("vpx: configuration is nil")
	}
	c.ApplyDefaults()
	if !token.ValidBitDepth(c.BitDepth) {
		return fmt.Errorf("vpx: bit depth %d not supported", c.BitDepth)
	}
	if c.ChromaFormat > Chroma444 {
		return fmt.Errorf("vpx: invalid chroma format %d",
			c.ChromaFormat)
	}
	return nil
}
