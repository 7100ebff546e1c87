// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
)

// BestState houses information about the current best block.
type BestState struct {
	Height uint64         // The height of the block.
	Hash   chainhash.Hash // The hash of the block.
}

// TipTracker follows the best chain tip through chain notifications.  It is
// safe for concurrent access.
type TipTracker struct {
	mtx  sync.RWMutex
	best BestState
}

// NewTipTracker returns a tracker positioned at the passed tip.
func NewTipTracker(best BestState) *TipTracker {
	return &TipTracker{best: best}
}

// BestSnapshot returns the current best chain tip.
func (t *TipTracker) BestSnapshot() BestState {
	t.mtx.RLock()
	best := t.best
	t.mtx.RUnlock()
	return best
}

// BestHeight returns the height of the current best chain tip.
func (t *TipTracker) BestHeight() uint64 {
	return t.BestSnapshot().Height
}

// HandleNotification moves the tip according to n.  It is meant to be
// registered with a Notifier ahead of any subscriber that reads the tip.
func (t *TipTracker) HandleNotification(n *Notification) {
	var best BestState
	switch n.Type {
	case NTBlockConnected:
		block, ok := n.Data.(*wire.MsgBlock)
		if !ok {
			log.Warnf("Chain connected notification is not a block.")
			return
		}
		best = BestState{Height: block.Header.Height, Hash: block.BlockHash()}

	case NTBlockDisconnected:
		block, ok := n.Data.(*wire.MsgBlock)
		if !ok {
			log.Warnf("Chain disconnected notification is not a block.")
			return
		}
		best = parentOf(block)

	case NTReorganization:
		data, ok := n.Data.(*ReorganizationNtfnsData)
		if !ok {
			log.Warnf("Chain reorganization notification has unexpected " +
				"data.")
			return
		}
		switch {
		case len(data.Added) > 0:
			tip := data.Added[len(data.Added)-1]
			best = BestState{Height: tip.Header.Height, Hash: tip.BlockHash()}
		case len(data.Removed) > 0:
			best = parentOf(data.Removed[0])
		default:
			return
		}
		best.Height = data.NewHeight

	default:
		return
	}

	t.mtx.Lock()
	t.best = best
	t.mtx.Unlock()
	log.Debugf("Best chain tip is now %v at height %d", best.Hash, best.Height)
}

// parentOf returns the tip left once block is disconnected.
func parentOf(block *wire.MsgBlock) BestState {
	var height uint64
	if block.Header.Height > 0 {
		height = block.Header.Height - 1
	}
	return BestState{Height: height, Hash: block.Header.PrevBlock}
}
