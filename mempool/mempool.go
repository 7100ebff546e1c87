// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/lru"
	"github.com/pkg/errors"
)

// TxStorageResponse describes where, if anywhere, a transaction is stored.
type TxStorageResponse int

// These constants are the possible outcomes of submitting a transaction.
const (
	// TxStorageUnconfirmedPool means the transaction is in the unconfirmed
	// pool.
	TxStorageUnconfirmedPool TxStorageResponse = iota

	// TxStorageReorgPool means the transaction was recently mined and is
	// kept in the reorg pool.
	TxStorageReorgPool

	// TxStorageNotStored means the transaction is not known.
	TxStorageNotStored

	// TxStorageNotStoredTimeLocked means the transaction cannot be mined
	// in the next block.
	TxStorageNotStoredTimeLocked

	// TxStorageNotStoredFeeTooLow means the pool is full and the
	// transaction does not outrank any stored transaction.
	TxStorageNotStoredFeeTooLow

	// TxStorageNotStoredAlreadyMined means a kernel of the transaction was
	// recently mined.
	TxStorageNotStoredAlreadyMined

	// TxStorageNotStoredNoKernels means the transaction has no kernel and
	// so no identity.
	TxStorageNotStoredNoKernels
)

var txStorageResponseStrings = map[TxStorageResponse]string{
	TxStorageUnconfirmedPool:       "UnconfirmedPool",
	TxStorageReorgPool:             "ReorgPool",
	TxStorageNotStored:             "NotStored",
	TxStorageNotStoredTimeLocked:   "NotStoredTimeLocked",
	TxStorageNotStoredFeeTooLow:    "NotStoredFeeTooLow",
	TxStorageNotStoredAlreadyMined: "NotStoredAlreadyMined",
	TxStorageNotStoredNoKernels:    "NotStoredNoKernels",
}

// String returns the TxStorageResponse in human-readable form.
func (r TxStorageResponse) String() string {
	if s, ok := txStorageResponseStrings[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown TxStorageResponse (%d)", int(r))
}

// Config is a descriptor containing the memory pool configuration.
type Config struct {
	// Policy defines the various mempool configuration options related
	// to policy.
	Policy Policy

	// Weight defines the function used to compute the weight of a
	// transaction.
	Weight WeightFunc

	// BestHeight defines the function to use to access the block height of
	// the current best chain.
	BestHeight func() uint64

	// Revalidate checks a transaction that depended on an output which
	// left the pool against the current chain state.  A nil function
	// accepts every such transaction.
	Revalidate func(tx *wire.MsgTx) error

	// Metrics receives the pool statistics.  It may be nil.
	Metrics *Metrics
}

// StatsResponse holds the size of the transaction pools.
type StatsResponse struct {
	UnconfirmedTxs    int
	ReorgTxs          int
	UnconfirmedWeight uint64
}

// StateResponse holds the content of the transaction pools.
type StateResponse struct {
	// UnconfirmedPool holds the unconfirmed transactions in descending
	// priority order.
	UnconfirmedPool []*wire.MsgTx

	// ReorgPool holds the first kernel signature of every recently mined
	// transaction.
	ReorgPool []wire.Signature
}

// TxPool is used as a source of transactions that need to be mined into
// blocks.  It combines the unconfirmed pool with the reorg pool used to
// restore transactions whose blocks are disconnected.
//
// TxPool is safe for concurrent access from multiple peers.
type TxPool struct {
	// The following variables must only be used atomically.
	lastUpdated int64 // last time pool was updated, in nanoseconds

	mtx          sync.RWMutex
	cfg          Config
	unconfirmed  *UnconfirmedPool
	reorg        *ReorgPool
	minedKernels lru.Cache

	// Notification callbacks.
	notificationsLock sync.RWMutex
	notifications     []NotificationCallback
}

// New returns a new memory pool for storing unconfirmed transactions and
// selecting them for block templates.
func New(cfg *Config) (*TxPool, error) {
	if cfg.Weight == nil {
		return nil, errors.New("mempool: missing weight function")
	}
	if cfg.BestHeight == nil {
		return nil, errors.New("mempool: missing best height function")
	}
	reorg, err := NewReorgPool(cfg.Policy.reorgPoolConfig())
	if err != nil {
		return nil, errors.Wrap(err, "mempool")
	}
	return &TxPool{
		cfg:          *cfg,
		unconfirmed:  NewUnconfirmedPool(cfg.Policy.unconfirmedPoolConfig()),
		reorg:        reorg,
		minedKernels: lru.NewCache(cfg.Policy.MinedKernelCacheSize),
	}, nil
}

// touch records a modification of the pool and refreshes the metrics.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) touch() {
	atomic.StoreInt64(&mp.lastUpdated, time.Now().UnixNano())
	mp.cfg.Metrics.update(mp.stats())
}

// ProcessTransaction submits tx to the unconfirmed pool and reports where it
// ended up.  dependentOutputs has the meaning documented on
// UnconfirmedPool.Insert.
//
// This function is safe for concurrent access.
func (mp *TxPool) ProcessTransaction(tx *wire.MsgTx, dependentOutputs []chainhash.Hash) TxStorageResponse {
	mp.mtx.Lock()
	resp := mp.processTransaction(tx, dependentOutputs)
	mp.mtx.Unlock()
	return resp
}

// processTransaction is the internal function which implements the public
// ProcessTransaction.  See the comment for ProcessTransaction for more
// details.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) processTransaction(tx *wire.MsgTx, dependentOutputs []chainhash.Hash) TxStorageResponse {
	resp, evicted := mp.maybeAcceptTransaction(tx, dependentOutputs)
	switch resp {
	case TxStorageUnconfirmedPool:
		if evicted != nil {
			mp.notifyRemoved([]*wire.MsgTx{evicted}, RemovedEvicted)
		}
		mp.touch()
	default:
		log.Debugf("Transaction %v not stored: %v", tx.FirstExcessSig(), resp)
		mp.cfg.Metrics.rejected(resp)
	}
	return resp
}

// maybeAcceptTransaction checks tx against the pool state and inserts it.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) maybeAcceptTransaction(tx *wire.MsgTx,
	dependentOutputs []chainhash.Hash) (TxStorageResponse, *wire.MsgTx) {

	if len(tx.Kernels) == 0 {
		return TxStorageNotStoredNoKernels, nil
	}
	if mp.unconfirmed.isDuplicate(tx) {
		return TxStorageUnconfirmedPool, nil
	}
	for _, k := range tx.Kernels {
		if mp.minedKernels.Contains(k.ExcessSig) {
			return TxStorageNotStoredAlreadyMined, nil
		}
	}

	tipHeight := mp.cfg.BestHeight()
	if tx.MinSpendableHeight() > tipHeight+1 {
		return TxStorageNotStoredTimeLocked, nil
	}

	stored, evicted := mp.unconfirmed.insert(tx, dependentOutputs, mp.cfg.Weight)
	if !stored {
		return TxStorageNotStoredFeeTooLow, nil
	}

	log.Debugf("Accepted transaction %v (pool size: %v)", tx.FirstExcessSig(),
		mp.unconfirmed.Len())
	mp.cfg.Metrics.accepted()
	mp.sendNotification(NTTxAccepted, tx)
	return TxStorageUnconfirmedPool, evicted
}

// RetrieveTransactions selects the highest priority transactions whose total
// weight does not exceed maxWeight for a block template.  Transactions whose
// unconfirmed dependencies left the pool are revalidated and inserted again
// before returning.
//
// This function is safe for concurrent access.
func (mp *TxPool) RetrieveTransactions(maxWeight uint64) ([]*wire.MsgTx, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	results, err := mp.unconfirmed.FetchHighestPriorityTxs(maxWeight)
	if err != nil {
		log.Errorf("Unable to select transactions: %v", err)
		return nil, err
	}

	mp.cfg.Metrics.recheck(len(results.TransactionsToInsert))
	for _, tx := range results.TransactionsToInsert {
		if mp.cfg.Revalidate != nil {
			if err := mp.cfg.Revalidate(tx); err != nil {
				log.Debugf("Dropping transaction %v: %v",
					tx.FirstExcessSig(), err)
				mp.notifyRemoved([]*wire.MsgTx{tx},
					RemovedRevalidationFailed)
				continue
			}
		}
		mp.processTransaction(tx, nil)
	}
	if len(results.TransactionsToInsert) > 0 {
		mp.touch()
	}

	log.Tracef("Retrieved transactions: %v", newLogClosure(func() string {
		sigs := make([]wire.Signature, 0, len(results.RetrievedTransactions))
		for _, tx := range results.RetrievedTransactions {
			sigs = append(sigs, tx.FirstExcessSig())
		}
		return spew.Sdump(sigs)
	}))
	return results.RetrievedTransactions, nil
}

// ProcessPublishedBlock removes every transaction the block mines or
// invalidates from the unconfirmed pool and keeps them in the reorg pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) ProcessPublishedBlock(block *wire.MsgBlock) {
	mp.mtx.Lock()
	mp.processPublishedBlock(block)
	mp.unconfirmed.Compact()
	mp.touch()
	mp.mtx.Unlock()
}

// processPublishedBlock is the internal function which implements the public
// ProcessPublishedBlock.  See the comment for ProcessPublishedBlock for more
// details.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) processPublishedBlock(block *wire.MsgBlock) {
	height := block.Header.Height
	removed := mp.unconfirmed.RemovePublishedAndDiscardDeprecatedTransactions(block)
	mp.reorg.InsertAll(height, removed)
	for _, k := range block.Body.Kernels {
		mp.minedKernels.Add(k.ExcessSig)
	}
	mp.reorg.RemoveExpired(height)
	mp.notifyRemoved(removed, RemovedPublished)

	log.Debugf("Processed block %v at height %d: removed %d %s", block.BlockHash(),
		height, len(removed), pickNoun(len(removed), "transaction", "transactions"))
}

// ProcessReorg brings the pools in line with a chain reorganization.
// Transactions removed because of the disconnected blocks are restored, the
// connected blocks are processed in order, and transactions that cannot be
// mined on the new tip are dropped.
//
// This function is safe for concurrent access.
func (mp *TxPool) ProcessReorg(removedBlocks, addedBlocks []*wire.MsgBlock) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	var (
		forkHeight = ^uint64(0)
		newTip     = mp.cfg.BestHeight()
	)
	for _, block := range removedBlocks {
		for _, k := range block.Body.Kernels {
			mp.minedKernels.Delete(k.ExcessSig)
		}
		if block.Header.Height < forkHeight {
			forkHeight = block.Header.Height
		}
	}
	if len(removedBlocks) > 0 {
		restored := mp.reorg.RemoveReorgedTxs(forkHeight)
		log.Infof("Restoring %d %s from %d disconnected %s", len(restored),
			pickNoun(len(restored), "transaction", "transactions"),
			len(removedBlocks), pickNoun(len(removedBlocks), "block", "blocks"))
		for _, tx := range restored {
			mp.processTransaction(tx, nil)
		}
		if forkHeight > 0 {
			newTip = forkHeight - 1
		}
	}

	for _, block := range addedBlocks {
		mp.processPublishedBlock(block)
		newTip = block.Header.Height
	}

	timelocked := mp.unconfirmed.RemoveTimelocked(newTip)
	mp.notifyRemoved(timelocked, RemovedTimeLocked)
	mp.unconfirmed.Compact()
	mp.touch()
}

// HasTxWithExcessSig reports which pool, if any, holds a transaction with a
// kernel carrying sig.
//
// This function is safe for concurrent access.
func (mp *TxPool) HasTxWithExcessSig(sig wire.Signature) TxStorageResponse {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	switch {
	case mp.unconfirmed.HasTxWithExcessSig(sig):
		return TxStorageUnconfirmedPool
	case mp.reorg.HasTxWithExcessSig(sig):
		return TxStorageReorgPool
	default:
		return TxStorageNotStored
	}
}

// RetrieveByExcessSigs returns the unconfirmed transactions owning a kernel
// with one of sigs and the signatures not found.
//
// This function is safe for concurrent access.
func (mp *TxPool) RetrieveByExcessSigs(sigs []wire.Signature) ([]*wire.MsgTx, []wire.Signature) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.unconfirmed.RetrieveByExcessSigs(sigs)
}

// stats returns the pool sizes.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) stats() *StatsResponse {
	return &StatsResponse{
		UnconfirmedTxs:    mp.unconfirmed.Len(),
		ReorgTxs:          mp.reorg.Len(),
		UnconfirmedWeight: mp.unconfirmed.CalculateWeight(),
	}
}

// Stats returns the pool sizes.
//
// This function is safe for concurrent access.
func (mp *TxPool) Stats() *StatsResponse {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.stats()
}

// State returns the content of the pools.
//
// This function is safe for concurrent access.
func (mp *TxPool) State() *StateResponse {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return &StateResponse{
		UnconfirmedPool: mp.unconfirmed.Snapshot(),
		ReorgPool:       mp.reorg.Snapshot(),
	}
}

// FeePerGramStats returns fee statistics for count consecutive buckets of at
// most weightPerBucket weight, starting with the highest paying
// transactions.
//
// This function is safe for concurrent access.
func (mp *TxPool) FeePerGramStats(count, weightPerBucket uint64) []FeeStat {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.unconfirmed.FeePerGramStats(count, weightPerBucket)
}

// CheckStatus verifies the internal consistency of the unconfirmed pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) CheckStatus() error {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.unconfirmed.CheckStatus()
}

// Count returns the number of transactions in the unconfirmed pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	count := mp.unconfirmed.Len()
	mp.mtx.RUnlock()

	return count
}

// LastUpdated returns the last time a transaction was added to or removed from
// the unconfirmed pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) LastUpdated() time.Time {
	return time.Unix(0, atomic.LoadInt64(&mp.lastUpdated))
}
