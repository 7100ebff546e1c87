// Copyright (c) 2014-2015 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import "github.com/btcsuite/mwcd/blockchain"

// DefaultCoinbaseWeight is the weight reserved for the coinbase kernel and
// output, including one gram of output features.
const DefaultCoinbaseWeight = blockchain.DefaultKernelWeight +
	blockchain.DefaultOutputWeight + 1

// Policy houses the policy (configuration parameters) which is used to control
// the generation of block templates.  See the documentation for
// NewBlockTemplate for more details on each of these parameters are used.
type Policy struct {
	// BlockMaxWeight is the maximum block weight to be used when
	// generating a block template.
	BlockMaxWeight uint64

	// CoinbaseWeight is the weight reserved for the coinbase, which is
	// added by the miner after the template is generated.
	CoinbaseWeight uint64
}

// DefaultPolicy returns the block template policy used on every network.
func DefaultPolicy() Policy {
	return Policy{
		BlockMaxWeight: blockchain.MaxBlockWeight,
		CoinbaseWeight: DefaultCoinbaseWeight,
	}
}
