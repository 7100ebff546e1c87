// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/btcsuite/mwcd/internal/log"
)

// Loggers for the main package.  They share the backend of the subsystem
// loggers in internal/log.
var (
	mwcdLog = log.MwcdLog
	srvrLog = log.SrvrLog
)
