// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

// testSeed makes every key and commitment created by the helpers unique
// across parallel tests.
var testSeed uint64

func nextTestSeed() [8]byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], atomic.AddUint64(&testSeed, 1))
	return buf
}

// newTestKernel returns a kernel signed with a fresh key.
func newTestKernel(t *testing.T, fee wire.Amount, lockHeight uint64) *wire.TxKernel {
	t.Helper()

	seed := nextTestSeed()
	keyBytes := blake2b.Sum256(seed[:])
	privKey, _ := btcec.PrivKeyFromBytes(keyBytes[:])
	kernel, err := wire.NewTxKernel(fee, lockHeight, privKey)
	require.NoError(t, err, "unable to create kernel")
	return kernel
}

// newTestOutput returns an output with a unique commitment.
func newTestOutput() *wire.TxOut {
	seed := nextTestSeed()
	var commitment [wire.CommitmentSize]byte
	commitment[0] = 0x08
	copy(commitment[1:], seed[:])
	return wire.NewTxOut(commitment, nil)
}

// newConfirmedOutputHash returns the hash of an output that no pool
// transaction produces.
func newConfirmedOutputHash() chainhash.Hash {
	return newTestOutput().Hash()
}

// newTestTx returns a single kernel transaction paying fee that spends the
// outputs with the passed hashes and creates numOutputs outputs.  When spends
// is empty a single confirmed output is spent.
func newTestTx(t *testing.T, fee wire.Amount, lockHeight uint64,
	spends []chainhash.Hash, numOutputs int) *wire.MsgTx {

	t.Helper()

	tx := wire.NewMsgTx()
	if len(spends) == 0 {
		spends = []chainhash.Hash{newConfirmedOutputHash()}
	}
	for i := range spends {
		tx.AddTxIn(wire.NewTxIn(&spends[i], 0))
	}
	for i := 0; i < numOutputs; i++ {
		tx.AddTxOut(newTestOutput())
	}
	tx.AddKernel(newTestKernel(t, fee, lockHeight))
	return tx
}

// testTxWeight is the weight constantWeight assigns in most tests.
const testTxWeight = 10

// constantWeight returns a weight function assigning w to every transaction,
// so a transaction paying f*w has a fee per gram of exactly f.
func constantWeight(w uint64) WeightFunc {
	return func(*wire.MsgTx) uint64 {
		return w
	}
}

// newFeePerGramTx returns a transaction with a fee per gram of feePerGram
// under constantWeight(testTxWeight).
func newFeePerGramTx(t *testing.T, feePerGram uint64) *wire.MsgTx {
	t.Helper()
	return newTestTx(t, wire.Amount(feePerGram*testTxWeight), 0, nil, 1)
}

// newTestUnconfirmedPool returns an empty pool with the passed limits.
func newTestUnconfirmedPool(capacity, skipCount int) *UnconfirmedPool {
	return NewUnconfirmedPool(UnconfirmedPoolConfig{
		StorageCapacity:   capacity,
		WeightTxSkipCount: skipCount,
	})
}

// newTestBlock returns a block at height that aggregates txs.
func newTestBlock(height uint64, txs ...*wire.MsgTx) *wire.MsgBlock {
	block := wire.NewMsgBlock(&wire.BlockHeader{Height: height})
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	block.UpdateKernelRoot()
	return block
}

// sigsOf returns the first kernel signature of each of txs.
func sigsOf(txs []*wire.MsgTx) []wire.Signature {
	sigs := make([]wire.Signature, 0, len(txs))
	for _, tx := range txs {
		sigs = append(sigs, tx.FirstExcessSig())
	}
	return sigs
}
