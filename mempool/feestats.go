// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math"

	"github.com/btcsuite/mwcd/wire"
)

// FeeStat summarizes the fee per gram paid by one block sized bucket of the
// unconfirmed pool.
type FeeStat struct {
	// Order is the bucket position, where 0 holds the highest paying
	// transactions.
	Order uint64

	// MinFeePerGram is the lowest fee per gram paid in the bucket.
	MinFeePerGram wire.Amount

	// AvgFeePerGram is the total fee of the bucket divided by its total
	// weight.
	AvgFeePerGram wire.Amount

	// MaxFeePerGram is the highest fee per gram paid in the bucket.
	MaxFeePerGram wire.Amount
}

// FeePerGramStats splits the pool, walked in descending priority order, into
// at most count consecutive buckets of at most weightPerBucket weight each,
// and summarizes the fee per gram of every bucket.  A transaction heavier
// than weightPerBucket fills a bucket on its own.  The result is empty when
// count or weightPerBucket is zero or the pool is empty.
func (p *UnconfirmedPool) FeePerGramStats(count, weightPerBucket uint64) []FeeStat {
	if count == 0 || weightPerBucket == 0 || len(p.txsByKey) == 0 {
		return nil
	}

	ranked := make([]*PrioritizedTransaction, 0, len(p.txsByKey))
	p.txsByPriority.Descend(func(prio FeePriority) bool {
		if ptx, ok := p.txsByKey[prio.Key()]; ok {
			ranked = append(ranked, ptx)
		}
		return true
	})

	var stats []FeeStat
	next := 0
	for order := uint64(0); order < count && next < len(ranked); order++ {
		var (
			bucketWeight uint64
			bucketFees   uint64
			minFee       = wire.Amount(math.MaxUint64)
			maxFee       wire.Amount
		)
		for next < len(ranked) {
			ptx := ranked[next]
			if bucketWeight > 0 && bucketWeight+ptx.Weight > weightPerBucket {
				break
			}
			bucketWeight += ptx.Weight
			bucketFees += uint64(ptx.Tx.TotalFees())
			if ptx.FeePerGram < minFee {
				minFee = ptx.FeePerGram
			}
			if ptx.FeePerGram > maxFee {
				maxFee = ptx.FeePerGram
			}
			next++
		}
		stats = append(stats, FeeStat{
			Order:         order,
			MinFeePerGram: minFee,
			AvgFeePerGram: wire.Amount(bucketFees / bucketWeight),
			MaxFeePerGram: maxFee,
		})
	}
	return stats
}
