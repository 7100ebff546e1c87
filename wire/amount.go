// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"strconv"
)

const (
	// MicroPerCoin is the number of base units in one coin.
	MicroPerCoin = 1e6
)

// Amount represents the base monetary unit.  A single Amount is equal to
// 1e-6 of a coin.  Fees and fee rates carried by kernels are expressed in
// this unit.
type Amount uint64

// ToCoin returns the amount as a floating point value in whole coins.
func (a Amount) ToCoin() float64 {
	return float64(a) / MicroPerCoin
}

// String returns the amount in base units followed by the unit suffix, for
// example "2500 µT".
func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10) + " µT"
}
