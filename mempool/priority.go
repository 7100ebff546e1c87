// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
)

// feePerGramScale is the fixed point scale applied to the fee-per-gram
// component of a FeePriority so transactions whose densities differ by less
// than one unit per gram still order correctly.
const feePerGramScale = 1000

// WeightFunc returns the weight of a transaction.  The pool calls it exactly
// once per inserted transaction.
type WeightFunc func(tx *wire.MsgTx) uint64

// FeePriority is the total order used to rank pool transactions.  A higher
// fee per gram ranks higher.  Transactions with an equal fee per gram are
// ranked by insertion order, where the older transaction ranks higher.
type FeePriority struct {
	scaledFeePerGram uint64
	key              uint64
}

// newFeePriority returns the priority of a transaction paying fee for the
// given weight that was stored under key.
func newFeePriority(fee wire.Amount, weight uint64, key uint64) FeePriority {
	return FeePriority{
		scaledFeePerGram: scaledFeePerGram(uint64(fee), weight),
		key:              key,
	}
}

// scaledFeePerGram returns fee*feePerGramScale/weight, saturating instead of
// overflowing for absurdly large fees.
func scaledFeePerGram(fee, weight uint64) uint64 {
	if fee > math.MaxUint64/feePerGramScale {
		return fee / weight * feePerGramScale
	}
	return fee * feePerGramScale / weight
}

// Less returns whether p ranks strictly below other.
func (p FeePriority) Less(other FeePriority) bool {
	if p.scaledFeePerGram != other.scaledFeePerGram {
		return p.scaledFeePerGram < other.scaledFeePerGram
	}
	return p.key > other.key
}

// Key returns the pool key of the transaction the priority belongs to.
func (p FeePriority) Key() uint64 {
	return p.key
}

// String returns a human-readable form of the priority.
func (p FeePriority) String() string {
	return fmt.Sprintf("%d.%03d/g (key %d)", p.scaledFeePerGram/feePerGramScale,
		p.scaledFeePerGram%feePerGramScale, p.key)
}

// lessPriority adapts FeePriority.Less to the btree comparator signature.
func lessPriority(a, b FeePriority) bool {
	return a.Less(b)
}

// PrioritizedTransaction is a transaction stored in the unconfirmed pool
// together with the data derived from it at insertion time.  None of the
// fields change for the lifetime of the entry.
type PrioritizedTransaction struct {
	// Key is the pool local identifier of the entry.
	Key uint64

	// Tx is the stored transaction.
	Tx *wire.MsgTx

	// Priority ranks the entry against every other entry.
	Priority FeePriority

	// Weight is the weight of Tx.
	Weight uint64

	// FeePerGram is the total fee of Tx divided by its weight.
	FeePerGram wire.Amount

	// DependentOutputHashes holds the hashes of the outputs Tx spends that
	// were produced by other unconfirmed transactions when Tx was inserted.
	// A producer may have left the pool since, so consumers must resolve
	// each hash through the output index again.
	DependentOutputHashes []chainhash.Hash

	// outputHashes caches the hashes of every output of Tx.
	outputHashes []chainhash.Hash
}

// newPrioritizedTransaction wraps tx with its priority data.  A weight of
// zero is treated as one so the fee-per-gram is always defined.
func newPrioritizedTransaction(key uint64, tx *wire.MsgTx, weight uint64,
	dependentOutputs []chainhash.Hash) *PrioritizedTransaction {

	if weight == 0 {
		weight = 1
	}
	fee := tx.TotalFees()
	return &PrioritizedTransaction{
		Key:                   key,
		Tx:                    tx,
		Priority:              newFeePriority(fee, weight, key),
		Weight:                weight,
		FeePerGram:            wire.Amount(uint64(fee) / weight),
		DependentOutputHashes: dedupHashes(dependentOutputs),
		outputHashes:          tx.OutputHashes(),
	}
}

// dedupHashes returns hashes with duplicates removed, preserving order.
func dedupHashes(hashes []chainhash.Hash) []chainhash.Hash {
	if len(hashes) < 2 {
		return hashes
	}
	seen := make(map[chainhash.Hash]struct{}, len(hashes))
	result := make([]chainhash.Hash, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		result = append(result, h)
	}
	return result
}
