// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mining builds block templates from the transactions held by a
transaction source.

Overview

A BlkTmplGenerator asks its TxSource for the highest priority transactions that
fit in a block after the weight reserved for the coinbase, and aggregates them
into a block extending the current best chain tip.  Solving the block and
adding the coinbase is left to the miner.
*/
package mining
