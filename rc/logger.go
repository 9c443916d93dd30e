// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package rc

import (
	"io"

	"github.com/ulikunitz/vpx/internal/xlog"
)

// debug stores a reference to a logger. It may contain nil for no output.
var debug xlog.Logger

// debugOn traces every coded bit on the given writer. If w is nil no output
// will be written.
func debugOn(w io.Writer) { debug = xlog.New(w, "rc: ") }

// debugOff switches the debugging output off.
func debugOff() { debug = nil }
