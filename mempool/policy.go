// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

const (
	// DefaultReorgPoolCapacity is the default number of recently mined
	// transactions kept by the reorg pool.
	DefaultReorgPoolCapacity = 10000

	// DefaultReorgPoolExpiryHeight is the default number of blocks a mined
	// transaction stays in the reorg pool.
	DefaultReorgPoolExpiryHeight = 10

	// DefaultMinedKernelCacheSize is the default number of recently mined
	// kernel signatures remembered to reject replays of mined transactions.
	DefaultMinedKernelCacheSize = 50000
)

// Policy houses the policy (configuration parameters) which is used to
// control the mempool.
type Policy struct {
	// StorageCapacity is the maximum number of transactions kept in the
	// unconfirmed pool.
	StorageCapacity int

	// WeightTxSkipCount is the number of candidates a template selection
	// may skip before it stops.
	WeightTxSkipCount int

	// ReorgPoolCapacity is the maximum number of mined transactions kept
	// for reinsertion after a reorganization.
	ReorgPoolCapacity int

	// ReorgPoolExpiryHeight is the number of blocks after which a mined
	// transaction is dropped from the reorg pool.
	ReorgPoolExpiryHeight uint64

	// MinedKernelCacheSize is the number of recently mined kernel
	// signatures remembered.
	MinedKernelCacheSize uint
}

// DefaultPolicy returns the default mempool policy.
func DefaultPolicy() Policy {
	return Policy{
		StorageCapacity:       DefaultStorageCapacity,
		WeightTxSkipCount:     DefaultWeightTxSkipCount,
		ReorgPoolCapacity:     DefaultReorgPoolCapacity,
		ReorgPoolExpiryHeight: DefaultReorgPoolExpiryHeight,
		MinedKernelCacheSize:  DefaultMinedKernelCacheSize,
	}
}

// unconfirmedPoolConfig returns the unconfirmed pool tunables of the policy.
func (p *Policy) unconfirmedPoolConfig() UnconfirmedPoolConfig {
	return UnconfirmedPoolConfig{
		StorageCapacity:   p.StorageCapacity,
		WeightTxSkipCount: p.WeightTxSkipCount,
	}
}

// reorgPoolConfig returns the reorg pool tunables of the policy.
func (p *Policy) reorgPoolConfig() ReorgPoolConfig {
	return ReorgPoolConfig{
		Capacity:     p.ReorgPoolCapacity,
		ExpiryHeight: p.ReorgPoolExpiryHeight,
	}
}
