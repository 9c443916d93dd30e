// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Package vpx implements the entropy coding of quantized transform
// coefficients as used by VP9 video streams.
//
// The package ties the components in the subpackages together. The range
// coder is provided by package rc, the token alphabet by package token, the
// scan orders and contexts by package scan, the adaptive probabilities by
// package probs and the block codec by package coef.
//
// A ContextStore holds the persistent probability contexts of a stream.
// Each frame is started with BeginFrame, which selects and possibly resets
// a context. The compressed header carries the differential probability
// updates, followed by the tiles. Tiles are coded with a TileEncoder or a
// TileDecoder. EndFrame adapts the probabilities to the token statistics
// of the frame and refreshes the selected context.
//
// Corrupted input never causes a panic. A tile that ran out of data is
// flagged corrupted and its frame is not used to refresh a context.
package vpx

import (
	"github.com/ulikunitz/vpx/coef"
	"github.com/ulikunitz/vpx/probs"
)

// Errors reported by the decoders. They can be tested with errors.Is.
var (
	ErrCorruptStream      = coef.ErrCorruptStream
	ErrRangeOverflow      = coef.ErrRangeOverflow
	ErrInvalidProbability = probs.ErrInvalidProbability
)
