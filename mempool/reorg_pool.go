// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// ReorgPoolConfig houses the tunables of a ReorgPool.
type ReorgPoolConfig struct {
	// Capacity is the maximum number of transactions kept.  The least
	// recently inserted transaction is dropped first.
	Capacity int

	// ExpiryHeight is the number of blocks after which a transaction is
	// dropped.
	ExpiryHeight uint64
}

// reorgEntry is a transaction removed from the unconfirmed pool while
// processing the block at height.
type reorgEntry struct {
	tx     *wire.MsgTx
	height uint64
	seq    uint64
}

// ReorgPool keeps the transactions the unconfirmed pool dropped because of
// recently published blocks, so they can be restored when those blocks are
// disconnected by a reorganization.  Entries are keyed by the excess
// signature of their first kernel, and every other kernel signature maps
// back to that key.
//
// ReorgPool is not safe for concurrent access.
type ReorgPool struct {
	cfg     ReorgPoolConfig
	txs     *lru.Cache
	kernels map[wire.Signature]wire.Signature
	seq     uint64
}

// NewReorgPool returns a new empty reorg pool.
func NewReorgPool(cfg ReorgPoolConfig) (*ReorgPool, error) {
	rp := &ReorgPool{
		cfg:     cfg,
		kernels: make(map[wire.Signature]wire.Signature),
	}
	txs, err := lru.NewWithEvict(cfg.Capacity, rp.onRemoved)
	if err != nil {
		return nil, errors.Wrapf(err, "reorg pool capacity %d", cfg.Capacity)
	}
	rp.txs = txs
	return rp, nil
}

// onRemoved drops the kernel index entries of a transaction leaving the
// cache, whether evicted or removed.
func (rp *ReorgPool) onRemoved(key, value interface{}) {
	first := key.(wire.Signature)
	for _, k := range value.(*reorgEntry).tx.Kernels {
		if rp.kernels[k.ExcessSig] == first {
			delete(rp.kernels, k.ExcessSig)
		}
	}
}

// InsertAll records txs as removed while processing the block at height.
// Transactions without kernels are ignored.
func (rp *ReorgPool) InsertAll(height uint64, txs []*wire.MsgTx) {
	for _, tx := range txs {
		if len(tx.Kernels) == 0 {
			continue
		}
		first := tx.FirstExcessSig()

		// Replacing a value in place skips the eviction callback, so an
		// existing entry is removed first to keep the kernel index exact.
		rp.txs.Remove(first)
		rp.txs.Add(first, &reorgEntry{
			tx:     tx,
			height: height,
			seq:    rp.seq,
		})
		for _, k := range tx.Kernels {
			rp.kernels[k.ExcessSig] = first
		}
		rp.seq++
	}
}

// entries returns every entry without touching the recency order.
func (rp *ReorgPool) entries() []*reorgEntry {
	keys := rp.txs.Keys()
	entries := make([]*reorgEntry, 0, len(keys))
	for _, key := range keys {
		if v, ok := rp.txs.Peek(key); ok {
			entries = append(entries, v.(*reorgEntry))
		}
	}
	return entries
}

// RemoveExpired drops every transaction recorded more than ExpiryHeight
// blocks below tipHeight and returns how many were dropped.
func (rp *ReorgPool) RemoveExpired(tipHeight uint64) int {
	var n int
	for _, e := range rp.entries() {
		if e.height+rp.cfg.ExpiryHeight < tipHeight {
			rp.txs.Remove(e.tx.FirstExcessSig())
			n++
		}
	}
	if n > 0 {
		log.Debugf("Expired %d reorg pool %s at tip height %d", n,
			pickNoun(n, "transaction", "transactions"), tipHeight)
	}
	return n
}

// RemoveReorgedTxs removes and returns every transaction recorded at or above
// fromHeight.  The result is ordered so that every transaction follows the
// returned transactions it spends from.
func (rp *ReorgPool) RemoveReorgedTxs(fromHeight uint64) []*wire.MsgTx {
	var restored []*reorgEntry
	for _, e := range rp.entries() {
		if e.height >= fromHeight {
			restored = append(restored, e)
			rp.txs.Remove(e.tx.FirstExcessSig())
		}
	}
	sort.Slice(restored, func(i, j int) bool {
		if restored[i].height != restored[j].height {
			return restored[i].height < restored[j].height
		}
		return restored[i].seq < restored[j].seq
	})

	txs := make([]*wire.MsgTx, 0, len(restored))
	for _, e := range restored {
		txs = append(txs, e.tx)
	}
	return orderByDependency(txs)
}

// HasTxWithExcessSig returns whether a transaction with a kernel carrying
// sig is in the pool.
func (rp *ReorgPool) HasTxWithExcessSig(sig wire.Signature) bool {
	first, ok := rp.kernels[sig]
	return ok && rp.txs.Contains(first)
}

// Len returns the number of transactions in the pool.
func (rp *ReorgPool) Len() int {
	return rp.txs.Len()
}

// Snapshot returns the first kernel signature of every transaction in the
// pool, oldest first.
func (rp *ReorgPool) Snapshot() []wire.Signature {
	entries := rp.entries()
	sigs := make([]wire.Signature, 0, len(entries))
	for _, e := range entries {
		sigs = append(sigs, e.tx.FirstExcessSig())
	}
	return sigs
}

// orderByDependency returns txs reordered so that each transaction comes
// after every other member of txs producing an output it spends.  The
// relative order of independent transactions is kept.
func orderByDependency(txs []*wire.MsgTx) []*wire.MsgTx {
	if len(txs) < 2 {
		return txs
	}

	producers := make(map[chainhash.Hash]int)
	for i, tx := range txs {
		for _, hash := range tx.OutputHashes() {
			producers[hash] = i
		}
	}

	emitted := make([]bool, len(txs))
	visiting := make([]bool, len(txs))
	ordered := make([]*wire.MsgTx, 0, len(txs))
	var visit func(i int)
	visit = func(i int) {
		if emitted[i] || visiting[i] {
			return
		}
		visiting[i] = true
		for _, in := range txs[i].TxIn {
			if j, ok := producers[in.OutputHash]; ok && j != i {
				visit(j)
			}
		}
		visiting[i] = false
		emitted[i] = true
		ordered = append(ordered, txs[i])
	}
	for i := range txs {
		visit(i)
	}
	return ordered
}
