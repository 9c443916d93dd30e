// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package coef

import (
	"io"

	"github.com/ulikunitz/vpx/internal/xlog"
)

// debug stores a reference to a logger. It may contain nil for no output.
var debug xlog.Logger

// debugOn reports every coded block on the given writer.
func debugOn(w io.Writer) { debug = xlog.New(w, "coef: ") }

// debugOff switches the debugging output off.
func debugOff() { debug = nil }
