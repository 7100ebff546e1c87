// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	"github.com/stretchr/testify/require"
)

// feesOf returns the total fee of each of txs.
func feesOf(txs []*wire.MsgTx) []wire.Amount {
	fees := make([]wire.Amount, 0, len(txs))
	for _, tx := range txs {
		fees = append(fees, tx.TotalFees())
	}
	return fees
}

// TestFeePriorityOrdering ensures a higher fee per gram ranks higher and that
// the older of two equally dense transactions ranks higher.
func TestFeePriorityOrdering(t *testing.T) {
	t.Parallel()

	low := newFeePriority(100, 10, 0)
	high := newFeePriority(200, 10, 1)
	require.True(t, low.Less(high))
	require.False(t, high.Less(low))

	older := newFeePriority(100, 10, 3)
	newer := newFeePriority(300, 30, 7)
	require.True(t, newer.Less(older), "newer entry must rank lower")
	require.False(t, older.Less(newer))
	require.False(t, older.Less(older))

	// Densities below one unit per gram still order correctly.
	require.True(t, newFeePriority(1, 3, 0).Less(newFeePriority(2, 3, 1)))
}

// TestInsertCapacityEviction ensures a full pool evicts its lowest priority
// transaction for a higher priority one and rejects everything else.
func TestInsertCapacityEviction(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(4, 3)
	weight := constantWeight(testTxWeight)

	txs := make(map[uint64]*wire.MsgTx)
	for _, feePerGram := range []uint64{5, 4, 20, 6} {
		txs[feePerGram] = newFeePerGramTx(t, feePerGram)
		pool.Insert(txs[feePerGram], nil, weight)
	}
	require.Equal(t, 4, pool.Len())

	// A transaction outranking the minimum evicts it.
	txs[11] = newFeePerGramTx(t, 11)
	pool.Insert(txs[11], nil, weight)
	require.Equal(t, 4, pool.Len())
	require.False(t, pool.HasTxWithExcessSig(txs[4].FirstExcessSig()),
		"lowest priority transaction should be evicted")
	require.True(t, pool.HasTxWithExcessSig(txs[11].FirstExcessSig()))

	// A transaction below the minimum is rejected.
	low := newFeePerGramTx(t, 3)
	pool.Insert(low, nil, weight)
	require.Equal(t, 4, pool.Len())
	require.False(t, pool.HasTxWithExcessSig(low.FirstExcessSig()))

	// A transaction matching the minimum density is newer and so ranks
	// lower, which makes it a rejection too.
	tie := newFeePerGramTx(t, 5)
	pool.Insert(tie, nil, weight)
	require.False(t, pool.HasTxWithExcessSig(tie.FirstExcessSig()))
	require.True(t, pool.HasTxWithExcessSig(txs[5].FirstExcessSig()))

	require.NoError(t, pool.CheckStatus())
}

// TestInsertZeroCapacity ensures a pool without capacity stores nothing.
func TestInsertZeroCapacity(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(0, 3)
	pool.Insert(newFeePerGramTx(t, 10), nil, constantWeight(testTxWeight))
	require.Zero(t, pool.Len())
}

// TestInsertCapacityInvariant inserts random transactions and ensures the pool
// never exceeds its capacity and always evicts the minimum.
func TestInsertCapacityInvariant(t *testing.T) {
	t.Parallel()

	const capacity = 16
	pool := newTestUnconfirmedPool(capacity, 3)
	weight := constantWeight(testTxWeight)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var lowest *wire.MsgTx
		if prio, ok := pool.txsByPriority.Min(); ok && pool.Len() == capacity {
			lowest = pool.txsByKey[prio.Key()].Tx
		}

		tx := newFeePerGramTx(t, uint64(rng.Intn(50)+1))
		pool.Insert(tx, nil, weight)
		require.LessOrEqual(t, pool.Len(), capacity)

		if lowest != nil && pool.HasTxWithExcessSig(tx.FirstExcessSig()) {
			require.False(t, pool.HasTxWithExcessSig(lowest.FirstExcessSig()),
				"minimum should be evicted when a new transaction is admitted")
		}
	}
	require.NoError(t, pool.CheckStatus())
}

// TestInsertDuplicate ensures inserting a transaction twice is a no-op.
func TestInsertDuplicate(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	tx := newFeePerGramTx(t, 7)

	pool.Insert(tx, nil, weight)
	pool.Insert(tx, nil, weight)
	pool.Insert(tx.Copy(), nil, weight)
	require.Equal(t, 1, pool.Len())
	require.Len(t, pool.txsBySignature[tx.FirstExcessSig()], 1)
	require.NoError(t, pool.CheckStatus())
}

// TestInsertKeyReuse ensures the key counter never hands out a live key.
func TestInsertKeyReuse(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	pool.Insert(newFeePerGramTx(t, 1), nil, weight)
	pool.Insert(newFeePerGramTx(t, 2), nil, weight)

	// Simulate a wrapped counter.
	pool.keyCounter = 0
	tx := newFeePerGramTx(t, 3)
	pool.Insert(tx, nil, weight)
	require.Equal(t, 3, pool.Len())
	require.Equal(t, tx, pool.txsByKey[2].Tx)
	require.NoError(t, pool.CheckStatus())
}

// TestInsertZeroWeight ensures a zero weight does not break the priority.
func TestInsertZeroWeight(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	tx := newTestTx(t, 50, 0, nil, 1)
	pool.Insert(tx, nil, constantWeight(0))

	require.Equal(t, 1, pool.Len())
	ptx := pool.txsByKey[0]
	require.EqualValues(t, 1, ptx.Weight)
	require.EqualValues(t, 50, ptx.FeePerGram)
}

// TestFetchRoundTrip inserts five transactions into a pool that holds four and
// selects the three highest paying ones.
func TestFetchRoundTrip(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(4, 3)
	weight := constantWeight(testTxWeight)
	txs := make(map[uint64]*wire.MsgTx)
	for _, feePerGram := range []uint64{5, 4, 20, 6, 11} {
		txs[feePerGram] = newFeePerGramTx(t, feePerGram)
		pool.Insert(txs[feePerGram], nil, weight)
	}
	require.Equal(t, 4, pool.Len())
	require.False(t, pool.HasTxWithExcessSig(txs[4].FirstExcessSig()))

	results, err := pool.FetchHighestPriorityTxs(3 * testTxWeight)
	require.NoError(t, err)
	require.Empty(t, results.TransactionsToInsert)
	require.Equal(t, []*wire.MsgTx{txs[20], txs[11], txs[6]},
		results.RetrievedTransactions)

	// Selection leaves the pool untouched.
	require.Equal(t, 4, pool.Len())
}

// TestFetchEmpty ensures an empty pool or budget selects nothing.
func TestFetchEmpty(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Empty(t, results.RetrievedTransactions)
	require.Empty(t, results.TransactionsToInsert)

	pool.Insert(newFeePerGramTx(t, 3), nil, constantWeight(testTxWeight))
	results, err = pool.FetchHighestPriorityTxs(0)
	require.NoError(t, err)
	require.Empty(t, results.RetrievedTransactions)
}

// newTestChain inserts a chain of transactions where each spends the first
// output of its predecessor.  The fee per gram of the i-th transaction is
// feesPerGram[i].
func newTestChain(t *testing.T, pool *UnconfirmedPool,
	feesPerGram []uint64) []*wire.MsgTx {

	t.Helper()

	weight := constantWeight(testTxWeight)
	chain := make([]*wire.MsgTx, 0, len(feesPerGram))
	var spends []chainhash.Hash
	for _, feePerGram := range feesPerGram {
		tx := newTestTx(t, wire.Amount(feePerGram*testTxWeight), 0, spends, 1)
		pool.Insert(tx, nil, weight)
		chain = append(chain, tx)
		spends = []chainhash.Hash{tx.TxOut[0].Hash()}
	}
	return chain
}

// TestFetchDependencyClosure ensures a chain is selected as a whole and in
// dependency order when its lowest member ranks first.
func TestFetchDependencyClosure(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	chain := newTestChain(t, pool, []uint64{1, 2, 3, 4})
	require.Len(t, pool.txsByKey[3].DependentOutputHashes, 1)

	results, err := pool.FetchHighestPriorityTxs(4 * testTxWeight)
	require.NoError(t, err)
	require.Equal(t, chain, results.RetrievedTransactions)
	require.Empty(t, results.TransactionsToInsert)
}

// TestFetchDependencyClosureNeverPartial ensures that when the budget cannot
// hold the closure of a transaction, it is skipped without selecting any of
// its ancestors on its behalf, and every selected transaction follows its
// ancestors.
func TestFetchDependencyClosureNeverPartial(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 5)
	chain := newTestChain(t, pool, []uint64{1, 2, 3, 4})

	// Only the first three fit, and the closure of the third is exactly
	// the first three.
	results, err := pool.FetchHighestPriorityTxs(3*testTxWeight + 5)
	require.NoError(t, err)
	require.Equal(t, chain[:3], results.RetrievedTransactions)

	// Nothing but the root fits.
	results, err = pool.FetchHighestPriorityTxs(testTxWeight)
	require.NoError(t, err)
	require.Equal(t, chain[:1], results.RetrievedTransactions)
}

// TestFetchSharedAncestor ensures an ancestor shared by two selected
// transactions is selected once.
func TestFetchSharedAncestor(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	parent := newTestTx(t, 1*testTxWeight, 0, nil, 2)
	left := newTestTx(t, 8*testTxWeight, 0,
		[]chainhash.Hash{parent.TxOut[0].Hash()}, 1)
	right := newTestTx(t, 6*testTxWeight, 0,
		[]chainhash.Hash{parent.TxOut[1].Hash()}, 1)
	pool.InsertMany([]*wire.MsgTx{parent, left, right}, weight)

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{parent, left, right},
		results.RetrievedTransactions)
}

// TestFetchDoubleSpendExclusion ensures two transactions spending the same
// output are never selected together.
func TestFetchDoubleSpendExclusion(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	spent := []chainhash.Hash{newConfirmedOutputHash()}
	first := newTestTx(t, 10*testTxWeight, 0, spent, 1)
	second := newTestTx(t, 5*testTxWeight, 0, spent, 1)
	pool.Insert(first, nil, weight)
	pool.Insert(second, nil, weight)

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{first}, results.RetrievedTransactions)
	require.Empty(t, results.TransactionsToInsert)
	require.Equal(t, 2, pool.Len(), "double spends stay in the pool")
}

// TestFetchDoubleSpendThroughClosure ensures an input spent by an ancestor
// of a selected transaction excludes a later candidate spending it too.
func TestFetchDoubleSpendThroughClosure(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	shared := newConfirmedOutputHash()

	parent := newTestTx(t, 1*testTxWeight, 0, nil, 1)
	child := newTestTx(t, 20*testTxWeight, 0,
		[]chainhash.Hash{parent.TxOut[0].Hash(), shared}, 1)
	rival := newTestTx(t, 10*testTxWeight, 0,
		[]chainhash.Hash{shared}, 1)
	pool.InsertMany([]*wire.MsgTx{parent, child, rival}, weight)

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{parent, child}, results.RetrievedTransactions)
}

// TestFetchUniqueIDConflict ensures two transactions creating outputs with
// the same unique id are never selected together.
func TestFetchUniqueIDConflict(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	first := newTestTx(t, 10*testTxWeight, 0, nil, 1)
	first.TxOut[0].Features.UniqueID = []byte("asset")
	second := newTestTx(t, 5*testTxWeight, 0, nil, 1)
	second.TxOut[0].Features.UniqueID = []byte("asset")
	pool.InsertMany([]*wire.MsgTx{first, second}, weight)
	require.Len(t, pool.txsByUniqueID["asset"], 2)

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{first}, results.RetrievedTransactions)
}

// TestFetchBrokenChain ensures a transaction whose producer left the pool is
// removed and returned for revalidation.
func TestFetchBrokenChain(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(2, 3)
	weight := constantWeight(testTxWeight)
	parent := newTestTx(t, 1*testTxWeight, 0, nil, 1)
	child := newTestTx(t, 5*testTxWeight, 0,
		[]chainhash.Hash{parent.TxOut[0].Hash()}, 1)
	pool.InsertMany([]*wire.MsgTx{parent, child}, weight)

	// Evict the parent.
	other := newFeePerGramTx(t, 10)
	pool.Insert(other, nil, weight)
	require.False(t, pool.HasTxWithExcessSig(parent.FirstExcessSig()))

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{other}, results.RetrievedTransactions)
	require.Equal(t, []*wire.MsgTx{child}, results.TransactionsToInsert)
	require.Equal(t, 1, pool.Len())
	require.NoError(t, pool.CheckStatus())
}

// TestFetchBrokenChainFlagsPath ensures every transaction on the path to a
// missing dependency is flagged, and that a transaction spending from a
// flagged one is flagged too.
func TestFetchBrokenChainFlagsPath(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 5)
	weight := constantWeight(testTxWeight)
	missing := newConfirmedOutputHash()

	// The first transaction claims a pool dependency that does not exist.
	root := newTestTx(t, 1*testTxWeight, 0, []chainhash.Hash{missing}, 1)
	pool.Insert(root, []chainhash.Hash{missing}, weight)
	middle := newTestTx(t, 2*testTxWeight, 0,
		[]chainhash.Hash{root.TxOut[0].Hash()}, 1)
	pool.Insert(middle, nil, weight)
	leaf := newTestTx(t, 3*testTxWeight, 0,
		[]chainhash.Hash{middle.TxOut[0].Hash()}, 1)
	pool.Insert(leaf, nil, weight)
	unrelated := newFeePerGramTx(t, 1)
	pool.Insert(unrelated, nil, weight)

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{unrelated}, results.RetrievedTransactions)
	require.ElementsMatch(t, []*wire.MsgTx{root, middle, leaf},
		results.TransactionsToInsert)
	require.Equal(t, 1, pool.Len())
}

// TestFetchTrustsExplicitDependencies ensures an empty dependency list is not
// replaced by derived dependencies.
func TestFetchTrustsExplicitDependencies(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	parent := newTestTx(t, 1*testTxWeight, 0, nil, 1)
	child := newTestTx(t, 5*testTxWeight, 0,
		[]chainhash.Hash{parent.TxOut[0].Hash()}, 1)
	pool.Insert(parent, nil, weight)
	pool.Insert(child, []chainhash.Hash{}, weight)

	results, err := pool.FetchHighestPriorityTxs(testTxWeight)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{child}, results.RetrievedTransactions)
}

// TestFetchDependencyCycle ensures cyclic dependency declarations terminate.
func TestFetchDependencyCycle(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	a := newTestTx(t, 2*testTxWeight, 0, nil, 1)
	b := newTestTx(t, 1*testTxWeight, 0, nil, 1)
	pool.Insert(a, []chainhash.Hash{b.TxOut[0].Hash()}, weight)
	pool.Insert(b, []chainhash.Hash{a.TxOut[0].Hash()}, weight)

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{b, a}, results.RetrievedTransactions)
}

// TestFetchSkipCount ensures selection stops after the configured number of
// skipped candidates.
func TestFetchSkipCount(t *testing.T) {
	t.Parallel()

	heavy := newTestTx(t, 10000, 0, nil, 1)
	light := newTestTx(t, 50, 0, nil, 1)
	weights := map[wire.Signature]uint64{
		heavy.FirstExcessSig(): 100,
		light.FirstExcessSig(): 10,
	}
	weight := func(tx *wire.MsgTx) uint64 {
		return weights[tx.FirstExcessSig()]
	}

	tests := []struct {
		name      string
		skipCount int
		want      []*wire.MsgTx
	}{
		{name: "stop after first skip", skipCount: 1, want: nil},
		{name: "continue past skip", skipCount: 2, want: []*wire.MsgTx{light}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			pool := newTestUnconfirmedPool(10, test.skipCount)
			pool.InsertMany([]*wire.MsgTx{heavy, light}, weight)

			results, err := pool.FetchHighestPriorityTxs(50)
			require.NoError(t, err)
			require.Equal(t, test.want, results.RetrievedTransactions)
		})
	}
}

// TestFetchStorageOutOfSync ensures a diverged index is reported.
func TestFetchStorageOutOfSync(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	parent := newTestTx(t, 1*testTxWeight, 0, nil, 1)
	child := newTestTx(t, 5*testTxWeight, 0,
		[]chainhash.Hash{parent.TxOut[0].Hash()}, 1)
	pool.InsertMany([]*wire.MsgTx{parent, child}, weight)

	// Drop the parent from the primary store behind the indices' back.
	delete(pool.txsByKey, 0)

	_, err := pool.FetchHighestPriorityTxs(1000)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrStorageOutOfSync))
	require.True(t, IsErrorCode(pool.CheckStatus(), ErrStorageOutOfSync))
}

// TestRemovePublished ensures publishing a block removes mined transactions,
// double spends of its inputs and duplicates of its outputs.
func TestRemovePublished(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	spent := []chainhash.Hash{newConfirmedOutputHash()}

	mined := newTestTx(t, 10*testTxWeight, 0, spent, 1)
	doubleSpend := newTestTx(t, 9*testTxWeight, 0, spent, 1)
	duplicate := newTestTx(t, 8*testTxWeight, 0, nil, 1)
	unrelated := newTestTx(t, 7*testTxWeight, 0, nil, 1)
	pool.InsertMany([]*wire.MsgTx{mined, doubleSpend, duplicate, unrelated}, weight)

	// The block also mines a transaction the pool never saw that creates
	// the same output as duplicate.
	foreign := newTestTx(t, 1, 0, nil, 0)
	foreign.AddTxOut(duplicate.TxOut[0])
	block := newTestBlock(1, mined, foreign)

	removed := pool.RemovePublishedAndDiscardDeprecatedTransactions(block)
	require.ElementsMatch(t, []*wire.MsgTx{mined, doubleSpend, duplicate}, removed)
	require.Equal(t, 1, pool.Len())
	require.True(t, pool.HasTxWithExcessSig(unrelated.FirstExcessSig()))
	for _, k := range block.Body.Kernels {
		require.False(t, pool.HasTxWithExcessSig(k.ExcessSig))
	}
	require.NoError(t, pool.CheckStatus())

	// Publishing the block again removes nothing.
	require.Empty(t, pool.RemovePublishedAndDiscardDeprecatedTransactions(block))
}

// TestRemovePublishedUniqueID ensures publishing a block removes pool
// transactions minting a unique id the block mints, so they never reach a
// later template.
func TestRemovePublishedUniqueID(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	minter := newTestTx(t, 10*testTxWeight, 0, nil, 1)
	minter.TxOut[0].Features.UniqueID = []byte("asset")
	other := newTestTx(t, 5*testTxWeight, 0, nil, 1)
	other.TxOut[0].Features.UniqueID = []byte("other")
	pool.InsertMany([]*wire.MsgTx{minter, other}, weight)

	foreign := newTestTx(t, 1, 0, nil, 1)
	foreign.TxOut[0].Features.UniqueID = []byte("asset")
	block := newTestBlock(1, foreign)

	removed := pool.RemovePublishedAndDiscardDeprecatedTransactions(block)
	require.Equal(t, []*wire.MsgTx{minter}, removed)
	require.Empty(t, pool.txsByUniqueID["asset"])
	require.NoError(t, pool.CheckStatus())

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Equal(t, []*wire.MsgTx{other}, results.RetrievedTransactions)
}

// TestRemoveTimelocked ensures only transactions that cannot be mined in the
// next block are removed.
func TestRemoveTimelocked(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	tx := newTestTx(t, 100, 100, nil, 1)
	require.EqualValues(t, 100, tx.MinSpendableHeight())
	pool.Insert(tx, nil, constantWeight(testTxWeight))

	require.Empty(t, pool.RemoveTimelocked(150))
	require.Empty(t, pool.RemoveTimelocked(99))
	require.Equal(t, 1, pool.Len())

	require.Equal(t, []*wire.MsgTx{tx}, pool.RemoveTimelocked(98))
	require.Zero(t, pool.Len())
}

// TestCompact ensures compaction only happens once enough slots are unused
// and keeps the pool intact.
func TestCompact(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(1000, 3)
	weight := constantWeight(testTxWeight)
	for i := 0; i < 150; i++ {
		pool.Insert(newFeePerGramTx(t, uint64(i+1)), nil, weight)
	}

	keys := make([]uint64, 0, 60)
	for key := uint64(0); key < 60; key++ {
		keys = append(keys, key)
	}
	pool.removeKeys(keys)
	pool.Compact()
	require.Equal(t, 150, pool.highWater, "compaction below threshold")

	keys = keys[:0]
	for key := uint64(60); key < 120; key++ {
		keys = append(keys, key)
	}
	pool.removeKeys(keys)
	pool.Compact()
	require.Equal(t, 30, pool.highWater)
	require.Equal(t, 30, pool.Len())
	require.NoError(t, pool.CheckStatus())

	results, err := pool.FetchHighestPriorityTxs(1000)
	require.NoError(t, err)
	require.Len(t, results.RetrievedTransactions, 30)
}

// TestRetrieveByExcessSigs ensures lookups by kernel signature report both
// the found transactions and the unknown signatures.
func TestRetrieveByExcessSigs(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	tx := newFeePerGramTx(t, 4)
	tx.AddKernel(newTestKernel(t, 1, 0))
	pool.Insert(tx, nil, weight)

	unknown := newFeePerGramTx(t, 1).FirstExcessSig()
	found, missing := pool.RetrieveByExcessSigs([]wire.Signature{
		tx.Kernels[0].ExcessSig, tx.Kernels[1].ExcessSig, unknown,
	})
	require.Equal(t, []*wire.MsgTx{tx}, found)
	require.Equal(t, []wire.Signature{unknown}, missing)
}

// TestSnapshotAndWeight ensures the pool reports its content in priority
// order along with its total weight.
func TestSnapshotAndWeight(t *testing.T) {
	t.Parallel()

	pool := newTestUnconfirmedPool(10, 3)
	weight := constantWeight(testTxWeight)
	for _, feePerGram := range []uint64{3, 9, 1} {
		pool.Insert(newFeePerGramTx(t, feePerGram), nil, weight)
	}

	require.Equal(t, []wire.Amount{90, 30, 10}, feesOf(pool.Snapshot()))
	require.EqualValues(t, 3*testTxWeight, pool.CalculateWeight())
}
