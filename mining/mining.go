// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	"github.com/pkg/errors"
)

// TxSource represents a source of transactions to consider for inclusion in
// new blocks.
//
// The interface contract requires that all of these methods are safe for
// concurrent access with respect to the source.
type TxSource interface {
	// LastUpdated returns the last time a transaction was added to or
	// removed from the source pool.
	LastUpdated() time.Time

	// RetrieveTransactions returns the highest priority transactions
	// whose total weight does not exceed maxWeight, ordered so that every
	// transaction follows the transactions it spends from.
	RetrieveTransactions(maxWeight uint64) ([]*wire.MsgTx, error)
}

// BestTipFunc returns the height and hash of the current best chain tip.
type BestTipFunc func() (uint64, chainhash.Hash)

// BlockTemplate houses a block that has yet to be solved along with
// additional details about the fees and weight of the transactions it
// aggregates.
type BlockTemplate struct {
	// Block is a block that is ready to be solved by miners once the
	// coinbase is added.  Its body is the aggregate of Txs.
	Block *wire.MsgBlock

	// Txs holds the transactions aggregated into the block, in the order
	// they were selected.
	Txs []*wire.MsgTx

	// TotalFees is the sum of the fees of every transaction in the
	// template.
	TotalFees wire.Amount

	// TotalWeight is the sum of the weights of every transaction in the
	// template.  It excludes the coinbase.
	TotalWeight uint64
}

// BlkTmplGenerator provides a type that can be used to generate block templates
// based on a given mining policy and source of transactions to choose from.
// It also houses additional state required in order to ensure the templates
// are built on top of the current best chain.
type BlkTmplGenerator struct {
	policy   *Policy
	weight   func(*wire.MsgTx) uint64
	txSource TxSource
	bestTip  BestTipFunc
}

// NewBlkTmplGenerator returns a new block template generator for the given
// policy using transactions from the provided transaction source.
func NewBlkTmplGenerator(policy *Policy, weight func(*wire.MsgTx) uint64,
	txSource TxSource, bestTip BestTipFunc) *BlkTmplGenerator {

	return &BlkTmplGenerator{
		policy:   policy,
		weight:   weight,
		txSource: txSource,
		bestTip:  bestTip,
	}
}

// NewBlockTemplate returns a new block template that is ready to be solved
// using the transactions from the passed transaction source pool and the
// coinbase added by the miner.
//
// The transactions selected are the highest priority ones the source holds
// whose total weight fits in the block after the weight reserved for the
// coinbase.  The source guarantees that a transaction is only selected
// together with the unconfirmed transactions it spends from and that no two
// selected transactions spend the same output.
//
// The template extends the current best chain tip.
func (g *BlkTmplGenerator) NewBlockTemplate() (*BlockTemplate, error) {
	if g.policy.CoinbaseWeight >= g.policy.BlockMaxWeight {
		return nil, errors.Errorf("coinbase weight %d leaves no room in "+
			"blocks of weight %d", g.policy.CoinbaseWeight,
			g.policy.BlockMaxWeight)
	}
	maxWeight := g.policy.BlockMaxWeight - g.policy.CoinbaseWeight

	txs, err := g.txSource.RetrieveTransactions(maxWeight)
	if err != nil {
		return nil, errors.Wrap(err, "unable to retrieve transactions")
	}

	tipHeight, tipHash := g.bestTip()
	block := wire.NewMsgBlock(&wire.BlockHeader{
		Height:    tipHeight + 1,
		PrevBlock: tipHash,
	})

	var totalFees wire.Amount
	var totalWeight uint64
	for _, tx := range txs {
		block.AddTransaction(tx)
		totalFees += tx.TotalFees()
		totalWeight += g.weight(tx)
	}
	if totalWeight > maxWeight {
		return nil, errors.Errorf("selected transactions weigh %d, more "+
			"than the available %d", totalWeight, maxWeight)
	}
	block.UpdateKernelRoot()

	log.Debugf("Created new block template (%d transactions, %v in fees, "+
		"%d weight, target height %d)", len(txs), totalFees, totalWeight,
		block.Header.Height)

	return &BlockTemplate{
		Block:       block,
		Txs:         txs,
		TotalFees:   totalFees,
		TotalWeight: totalWeight,
	}, nil
}

// TxSource returns the associated transaction source.
//
// This function is safe for concurrent access.
func (g *BlkTmplGenerator) TxSource() TxSource {
	return g.txSource
}
