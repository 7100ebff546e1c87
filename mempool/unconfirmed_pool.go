// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"slices"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	"github.com/google/btree"
)

const (
	// DefaultStorageCapacity is the default maximum number of transactions
	// held by the unconfirmed pool.
	DefaultStorageCapacity = 40000

	// DefaultWeightTxSkipCount is the default number of candidates the
	// selection loop may skip before it gives up filling a template.
	DefaultWeightTxSkipCount = 20

	// compactionThreshold is the number of unused primary store slots that
	// must accumulate before Compact releases memory.
	compactionThreshold = 100

	// priorityIndexDegree is the degree of the btree backing the priority
	// index.
	priorityIndexDegree = 32
)

// UnconfirmedPoolConfig houses the tunables of an UnconfirmedPool.
type UnconfirmedPoolConfig struct {
	// StorageCapacity is the maximum number of transactions the pool holds.
	StorageCapacity int

	// WeightTxSkipCount is the number of candidates FetchHighestPriorityTxs
	// may skip before it stops examining further candidates.
	WeightTxSkipCount int
}

// DefaultUnconfirmedPoolConfig returns the default unconfirmed pool tunables.
func DefaultUnconfirmedPoolConfig() UnconfirmedPoolConfig {
	return UnconfirmedPoolConfig{
		StorageCapacity:   DefaultStorageCapacity,
		WeightTxSkipCount: DefaultWeightTxSkipCount,
	}
}

// RetrieveResults is the outcome of a template selection.
type RetrieveResults struct {
	// RetrievedTransactions are the selected transactions, ordered so every
	// transaction follows the unconfirmed transactions it spends from.
	// They stay in the pool until the block that mines them is published.
	RetrievedTransactions []*wire.MsgTx

	// TransactionsToInsert are transactions the selection found to depend
	// on outputs no longer present in the pool.  They were removed and
	// must be revalidated against the chain before being inserted again.
	TransactionsToInsert []*wire.MsgTx
}

// UnconfirmedPool holds valid transactions that are not yet mined, ranked by
// fee per gram, and selects dependency consistent subsets of them for block
// templates.
//
// Every entry lives in the primary store keyed by a pool local key and is
// referenced by four secondary indices: priority, kernel excess signature,
// output hash and output unique id.  removeTransaction is the only function
// that deletes from the primary store, which keeps the indices consistent.
//
// UnconfirmedPool is not safe for concurrent access.  TxPool serializes all
// access to it.
type UnconfirmedPool struct {
	cfg UnconfirmedPoolConfig

	keyCounter     uint64
	txsByKey       map[uint64]*PrioritizedTransaction
	txsByPriority  *btree.BTreeG[FeePriority]
	txsBySignature map[wire.Signature][]uint64
	txsByOutput    map[chainhash.Hash][]uint64
	txsByUniqueID  map[string][]uint64

	// highWater is the largest size the primary store reached since the
	// last compaction.  Go maps never shrink, so it approximates the
	// number of slots the store holds.
	highWater int
}

// NewUnconfirmedPool returns a new empty unconfirmed pool.
func NewUnconfirmedPool(cfg UnconfirmedPoolConfig) *UnconfirmedPool {
	return &UnconfirmedPool{
		cfg:            cfg,
		txsByKey:       make(map[uint64]*PrioritizedTransaction),
		txsByPriority:  btree.NewG(priorityIndexDegree, lessPriority),
		txsBySignature: make(map[wire.Signature][]uint64),
		txsByOutput:    make(map[chainhash.Hash][]uint64),
		txsByUniqueID:  make(map[string][]uint64),
	}
}

// Insert adds tx to the pool.
//
// dependentOutputs lists the hashes of outputs spent by tx that are produced
// by other unconfirmed transactions.  A nil slice makes the pool derive them
// from its own output index.  A non-nil slice, including an empty one, is
// trusted as given.
//
// A transaction whose kernels are all already present is ignored.  When the
// pool is full, tx is only admitted if it outranks the lowest priority entry,
// which is then evicted.
func (p *UnconfirmedPool) Insert(tx *wire.MsgTx, dependentOutputs []chainhash.Hash,
	weight WeightFunc) {

	p.insert(tx, dependentOutputs, weight)
}

// InsertMany inserts every transaction in txs, deriving dependencies from the
// output index.  Transactions are inserted in slice order, so producers
// should precede the transactions spending from them.
func (p *UnconfirmedPool) InsertMany(txs []*wire.MsgTx, weight WeightFunc) {
	for _, tx := range txs {
		p.insert(tx, nil, weight)
	}
}

// insert implements Insert.  It returns whether tx is stored in the pool
// afterwards together with the transaction evicted to make room for it, if
// any.
func (p *UnconfirmedPool) insert(tx *wire.MsgTx, dependentOutputs []chainhash.Hash,
	weight WeightFunc) (bool, *wire.MsgTx) {

	if p.isDuplicate(tx) {
		log.Tracef("Ignoring transaction %v: already in the unconfirmed pool",
			tx.FirstExcessSig())
		return true, nil
	}

	if dependentOutputs == nil {
		dependentOutputs = p.poolDependencies(tx)
	}
	p.keyCounter = p.nextFreeKey(p.keyCounter)
	ptx := newPrioritizedTransaction(p.keyCounter, tx, weight(tx),
		dependentOutputs)
	p.keyCounter++

	var evicted *wire.MsgTx
	if len(p.txsByKey) >= p.cfg.StorageCapacity {
		lowest, ok := p.txsByPriority.Min()
		if !ok || !lowest.Less(ptx.Priority) {
			log.Tracef("Rejecting transaction %v with priority %v: pool "+
				"is full", tx.FirstExcessSig(), ptx.Priority)
			return false, nil
		}
		evicted = p.removeTransaction(lowest.Key())
		log.Debugf("Evicted transaction %v with priority %v to make room "+
			"for %v", evicted.FirstExcessSig(), lowest, tx.FirstExcessSig())
	}

	p.addTransaction(ptx)
	log.Tracef("Inserted transaction %v with priority %v (%d dependent %s)",
		tx.FirstExcessSig(), ptx.Priority, len(ptx.DependentOutputHashes),
		pickNoun(len(ptx.DependentOutputHashes), "output", "outputs"))
	return true, evicted
}

// nextFreeKey returns the first key at or after key that is not in use.
// Keys only repeat after the counter wraps, which never happens in practice.
func (p *UnconfirmedPool) nextFreeKey(key uint64) uint64 {
	for {
		if _, ok := p.txsByKey[key]; !ok {
			return key
		}
		key++
	}
}

// isDuplicate returns whether every kernel of tx is already in the pool.
func (p *UnconfirmedPool) isDuplicate(tx *wire.MsgTx) bool {
	for _, k := range tx.Kernels {
		if _, ok := p.txsBySignature[k.ExcessSig]; !ok {
			return false
		}
	}
	return true
}

// poolDependencies returns the hashes of the outputs spent by tx that are
// produced by transactions currently in the pool.
func (p *UnconfirmedPool) poolDependencies(tx *wire.MsgTx) []chainhash.Hash {
	deps := make([]chainhash.Hash, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		if _, ok := p.txsByOutput[in.OutputHash]; ok {
			deps = append(deps, in.OutputHash)
		}
	}
	return deps
}

// addTransaction adds ptx to the primary store and every index.
func (p *UnconfirmedPool) addTransaction(ptx *PrioritizedTransaction) {
	p.txsByKey[ptx.Key] = ptx
	p.txsByPriority.ReplaceOrInsert(ptx.Priority)
	for _, k := range ptx.Tx.Kernels {
		p.txsBySignature[k.ExcessSig] = append(
			p.txsBySignature[k.ExcessSig], ptx.Key)
	}
	for _, hash := range ptx.outputHashes {
		p.txsByOutput[hash] = append(p.txsByOutput[hash], ptx.Key)
	}
	for _, out := range ptx.Tx.TxOut {
		if id := out.Features.UniqueID; len(id) > 0 {
			p.txsByUniqueID[string(id)] = append(
				p.txsByUniqueID[string(id)], ptx.Key)
		}
	}
	if len(p.txsByKey) > p.highWater {
		p.highWater = len(p.txsByKey)
	}
}

// removeTransaction removes the entry stored under key from the primary store
// and every index.  It returns the removed transaction, or nil when no entry
// has the key.
func (p *UnconfirmedPool) removeTransaction(key uint64) *wire.MsgTx {
	ptx, ok := p.txsByKey[key]
	if !ok {
		return nil
	}
	delete(p.txsByKey, key)
	p.txsByPriority.Delete(ptx.Priority)
	for _, k := range ptx.Tx.Kernels {
		removeIndexKey(p.txsBySignature, k.ExcessSig, key)
	}
	for _, hash := range ptx.outputHashes {
		removeIndexKey(p.txsByOutput, hash, key)
	}
	for _, out := range ptx.Tx.TxOut {
		if id := out.Features.UniqueID; len(id) > 0 {
			removeIndexKey(p.txsByUniqueID, string(id), key)
		}
	}
	return ptx.Tx
}

// removeIndexKey removes key from the list stored under indexKey in a
// secondary index, dropping the list once it is empty.
func removeIndexKey[K comparable](index map[K][]uint64, indexKey K, key uint64) {
	keys := index[indexKey]
	for i, k := range keys {
		if k == key {
			keys = append(keys[:i], keys[i+1:]...)
			break
		}
	}
	if len(keys) == 0 {
		delete(index, indexKey)
		return
	}
	index[indexKey] = keys
}

// removeKeys removes the entries stored under keys in ascending key order and
// returns the transactions that were present.
func (p *UnconfirmedPool) removeKeys(keys []uint64) []*wire.MsgTx {
	slices.Sort(keys)
	removed := make([]*wire.MsgTx, 0, len(keys))
	for _, key := range keys {
		if tx := p.removeTransaction(key); tx != nil {
			removed = append(removed, tx)
		}
	}
	return removed
}

// producerOf returns the highest priority entry producing the output with
// the passed hash, or nil when no entry produces it.
func (p *UnconfirmedPool) producerOf(hash chainhash.Hash) (*PrioritizedTransaction, error) {
	var best *PrioritizedTransaction
	for _, key := range p.txsByOutput[hash] {
		ptx, ok := p.txsByKey[key]
		if !ok {
			return nil, storageOutOfSync("output %v references missing "+
				"transaction key %d", hash, key)
		}
		if best == nil || best.Priority.Less(ptx.Priority) {
			best = ptx
		}
	}
	return best, nil
}

// FetchHighestPriorityTxs selects transactions in descending priority order
// whose total weight does not exceed totalWeight.
//
// Each candidate is taken together with every unconfirmed transaction it
// depends on, or not at all.  A candidate is skipped when its dependency
// closure does not fit in the remaining weight, spends an input already
// spent by the selection or by another member of the closure, reuses an
// output unique id, or reaches a dependency that is no longer in the pool.
// Selection stops once WeightTxSkipCount candidates were skipped.
//
// Transactions whose dependency chain is broken are removed from the pool
// and returned in TransactionsToInsert.  Selected transactions stay in the
// pool.
func (p *UnconfirmedPool) FetchHighestPriorityTxs(totalWeight uint64) (*RetrieveResults, error) {
	var (
		selected     = newTxSelection()
		recheckKeys  []uint64
		recheck      = make(map[uint64]struct{})
		skipCount    int
		selectionErr error
	)
	p.txsByPriority.Descend(func(prio FeePriority) bool {
		key := prio.Key()
		if selected.contains(key) {
			return true
		}
		if _, ok := recheck[key]; ok {
			return true
		}
		ptx, ok := p.txsByKey[key]
		if !ok {
			selectionErr = storageOutOfSync("priority index references "+
				"missing transaction key %d", key)
			return false
		}

		closure, err := p.dependencyClosure(ptx, selected, recheck)
		if err != nil {
			selectionErr = err
			return false
		}

		if len(closure.broken) == 0 &&
			selected.weight+closure.weight <= totalWeight &&
			!selected.conflicts(closure) {

			selected.add(closure)
			return true
		}

		for _, k := range closure.broken {
			if _, ok := recheck[k]; !ok {
				recheck[k] = struct{}{}
				recheckKeys = append(recheckKeys, k)
			}
		}
		skipCount++
		log.Tracef("Skipped transaction %v (%d/%d skips)", ptx.Tx.FirstExcessSig(),
			skipCount, p.cfg.WeightTxSkipCount)
		return skipCount < p.cfg.WeightTxSkipCount
	})
	if selectionErr != nil {
		return nil, selectionErr
	}

	results := &RetrieveResults{
		RetrievedTransactions: selected.txs,
		TransactionsToInsert:  p.removeKeys(recheckKeys),
	}
	log.Debugf("Selected %d %s with total weight %d, %d %s flagged for "+
		"recheck", len(results.RetrievedTransactions),
		pickNoun(len(results.RetrievedTransactions), "transaction", "transactions"),
		selected.weight, len(results.TransactionsToInsert),
		pickNoun(len(results.TransactionsToInsert), "transaction", "transactions"))
	return results, nil
}

// closureFrame is a pending entry of the dependency closure walk.
type closureFrame struct {
	ptx  *PrioritizedTransaction
	next int
}

// dependencyClosure is a transaction together with every unconfirmed
// transaction it transitively depends on that is not yet selected.
type dependencyClosure struct {
	keys   map[uint64]struct{}
	txs    []*PrioritizedTransaction
	weight uint64

	// broken lists the keys of the chain that reached a missing
	// dependency, from the deepest transaction up to the root.  When it is
	// non-empty the closure is incomplete and must not be selected.
	broken []uint64
}

// dependencyClosure walks the dependencies of root depth first.  Entries are
// appended to the closure after all of their dependencies, so the closure is
// ordered for inclusion in a block.  Dependencies that are already selected
// are not revisited, and entries on the current path are skipped, which
// bounds the walk on cyclic input.
//
// A dependency counts as missing when no entry produces it or when its
// producer is already flagged for recheck.  The walk then stops, and every
// transaction on the current path from root to the missing dependency is
// reported in broken.
func (p *UnconfirmedPool) dependencyClosure(root *PrioritizedTransaction,
	selected *txSelection, recheck map[uint64]struct{}) (*dependencyClosure, error) {

	c := &dependencyClosure{keys: make(map[uint64]struct{})}
	stack := []closureFrame{{ptx: root}}
	onStack := map[uint64]struct{}{root.Key: {}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.ptx.DependentOutputHashes) {
			hash := top.ptx.DependentOutputHashes[top.next]
			top.next++

			producer, err := p.producerOf(hash)
			if err != nil {
				return nil, err
			}
			_, flagged := recheck[producerKey(producer)]
			if producer == nil || flagged {
				for i := len(stack) - 1; i >= 0; i-- {
					c.broken = append(c.broken, stack[i].ptx.Key)
				}
				log.Debugf("Transaction %v depends on output %v which is "+
					"no longer in the pool", top.ptx.Tx.FirstExcessSig(), hash)
				return c, nil
			}

			key := producer.Key
			if _, ok := onStack[key]; ok {
				continue
			}
			if _, ok := c.keys[key]; ok || selected.contains(key) {
				continue
			}
			stack = append(stack, closureFrame{ptx: producer})
			onStack[key] = struct{}{}
			continue
		}

		ptx := top.ptx
		stack = stack[:len(stack)-1]
		delete(onStack, ptx.Key)
		c.keys[ptx.Key] = struct{}{}
		c.txs = append(c.txs, ptx)
		c.weight += ptx.Weight
	}
	return c, nil
}

// producerKey returns the key of ptx, or a key that is never flagged for a
// nil ptx.
func producerKey(ptx *PrioritizedTransaction) uint64 {
	if ptx == nil {
		return ^uint64(0)
	}
	return ptx.Key
}

// txSelection accumulates the transactions chosen for a template.
type txSelection struct {
	keys      map[uint64]struct{}
	inputs    map[chainhash.Hash]struct{}
	uniqueIDs map[string]struct{}
	txs       []*wire.MsgTx
	weight    uint64
}

func newTxSelection() *txSelection {
	return &txSelection{
		keys:      make(map[uint64]struct{}),
		inputs:    make(map[chainhash.Hash]struct{}),
		uniqueIDs: make(map[string]struct{}),
	}
}

func (s *txSelection) contains(key uint64) bool {
	_, ok := s.keys[key]
	return ok
}

// conflicts returns whether adding c to the selection would spend an output
// twice or create two outputs with the same unique id.
func (s *txSelection) conflicts(c *dependencyClosure) bool {
	inputs := make(map[chainhash.Hash]struct{})
	uniqueIDs := make(map[string]struct{})
	for _, ptx := range c.txs {
		for _, in := range ptx.Tx.TxIn {
			if _, ok := s.inputs[in.OutputHash]; ok {
				return true
			}
			if _, ok := inputs[in.OutputHash]; ok {
				return true
			}
			inputs[in.OutputHash] = struct{}{}
		}
		for _, out := range ptx.Tx.TxOut {
			id := out.Features.UniqueID
			if len(id) == 0 {
				continue
			}
			if _, ok := s.uniqueIDs[string(id)]; ok {
				return true
			}
			if _, ok := uniqueIDs[string(id)]; ok {
				return true
			}
			uniqueIDs[string(id)] = struct{}{}
		}
	}
	return false
}

// add commits c to the selection.
func (s *txSelection) add(c *dependencyClosure) {
	for _, ptx := range c.txs {
		s.keys[ptx.Key] = struct{}{}
		for _, in := range ptx.Tx.TxIn {
			s.inputs[in.OutputHash] = struct{}{}
		}
		for _, out := range ptx.Tx.TxOut {
			if id := out.Features.UniqueID; len(id) > 0 {
				s.uniqueIDs[string(id)] = struct{}{}
			}
		}
		s.txs = append(s.txs, ptx.Tx)
	}
	s.weight += c.weight
}

// RemovePublishedAndDiscardDeprecatedTransactions reconciles the pool with a
// newly published block.  It removes every transaction that shares a kernel
// with the block, spends an input the block spends, produces an output the
// block produces or mints a unique id the block mints.  The removed
// transactions are returned.
func (p *UnconfirmedPool) RemovePublishedAndDiscardDeprecatedTransactions(
	block *wire.MsgBlock) []*wire.MsgTx {

	marked := make(map[uint64]struct{})
	mark := func(keys []uint64) {
		for _, key := range keys {
			marked[key] = struct{}{}
		}
	}

	// Mined transactions.
	for _, k := range block.Body.Kernels {
		mark(p.txsBySignature[k.ExcessSig])
	}

	// Transactions double spending an input of the block.
	spent := make(map[chainhash.Hash]struct{}, len(block.Body.TxIn))
	for _, in := range block.Body.TxIn {
		spent[in.OutputHash] = struct{}{}
	}
	if len(spent) > 0 {
		for key, ptx := range p.txsByKey {
			for _, in := range ptx.Tx.TxIn {
				if _, ok := spent[in.OutputHash]; ok {
					marked[key] = struct{}{}
					break
				}
			}
		}
	}

	// Transactions duplicating an output of the block or minting a unique
	// id the block already minted.
	for _, out := range block.Body.TxOut {
		mark(p.txsByOutput[out.Hash()])
		if id := out.Features.UniqueID; len(id) > 0 {
			mark(p.txsByUniqueID[string(id)])
		}
	}

	keys := make([]uint64, 0, len(marked))
	for key := range marked {
		keys = append(keys, key)
	}
	removed := p.removeKeys(keys)
	if len(removed) > 0 {
		log.Debugf("Removed %d %s invalidated by block %v at height %d",
			len(removed), pickNoun(len(removed), "transaction", "transactions"),
			block.BlockHash(), block.Header.Height)
	}
	return removed
}

// RemoveTimelocked removes and returns every transaction that cannot be
// included in the block following tipHeight.
func (p *UnconfirmedPool) RemoveTimelocked(tipHeight uint64) []*wire.MsgTx {
	var keys []uint64
	for key, ptx := range p.txsByKey {
		if ptx.Tx.MinSpendableHeight() > tipHeight+1 {
			keys = append(keys, key)
		}
	}
	removed := p.removeKeys(keys)
	if len(removed) > 0 {
		log.Debugf("Removed %d time-locked %s at tip height %d", len(removed),
			pickNoun(len(removed), "transaction", "transactions"), tipHeight)
	}
	return removed
}

// Compact releases memory held by the maps of the pool once enough slots
// freed up since the primary store was at its largest.  Half of the excess
// is kept as headroom.
func (p *UnconfirmedPool) Compact() {
	excess := p.highWater - len(p.txsByKey)
	if excess <= compactionThreshold {
		return
	}
	hint := len(p.txsByKey) + excess/2

	txsByKey := make(map[uint64]*PrioritizedTransaction, hint)
	for key, ptx := range p.txsByKey {
		txsByKey[key] = ptx
	}
	p.txsByKey = txsByKey
	p.txsBySignature = compactIndex(p.txsBySignature)
	p.txsByOutput = compactIndex(p.txsByOutput)
	p.txsByUniqueID = compactIndex(p.txsByUniqueID)
	p.highWater = len(p.txsByKey)

	log.Debugf("Compacted unconfirmed pool from %d to %d slots", excess+
		len(p.txsByKey), hint)
}

// compactIndex returns a freshly allocated copy of a secondary index.
func compactIndex[K comparable](index map[K][]uint64) map[K][]uint64 {
	compacted := make(map[K][]uint64, len(index))
	for k, keys := range index {
		compacted[k] = keys
	}
	return compacted
}

// Len returns the number of transactions in the pool.
func (p *UnconfirmedPool) Len() int {
	return len(p.txsByKey)
}

// HasTxWithExcessSig returns whether a transaction with a kernel carrying sig
// is in the pool.
func (p *UnconfirmedPool) HasTxWithExcessSig(sig wire.Signature) bool {
	_, ok := p.txsBySignature[sig]
	return ok
}

// RetrieveByExcessSigs returns the pool transactions owning a kernel with
// one of sigs, together with the signatures no transaction in the pool owns.
// Each transaction is returned once even if several of its kernels match.
func (p *UnconfirmedPool) RetrieveByExcessSigs(sigs []wire.Signature) ([]*wire.MsgTx, []wire.Signature) {
	var (
		found   []*wire.MsgTx
		missing []wire.Signature
		seen    = make(map[uint64]struct{})
	)
	for _, sig := range sigs {
		keys, ok := p.txsBySignature[sig]
		if !ok {
			missing = append(missing, sig)
			continue
		}
		for _, key := range keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if ptx, ok := p.txsByKey[key]; ok {
				found = append(found, ptx.Tx)
			}
		}
	}
	return found, missing
}

// Snapshot returns every transaction in the pool in descending priority
// order.
func (p *UnconfirmedPool) Snapshot() []*wire.MsgTx {
	txs := make([]*wire.MsgTx, 0, len(p.txsByKey))
	p.txsByPriority.Descend(func(prio FeePriority) bool {
		if ptx, ok := p.txsByKey[prio.Key()]; ok {
			txs = append(txs, ptx.Tx)
		}
		return true
	})
	return txs
}

// CalculateWeight returns the total weight of every transaction in the pool.
func (p *UnconfirmedPool) CalculateWeight() uint64 {
	var total uint64
	for _, ptx := range p.txsByKey {
		total += ptx.Weight
	}
	return total
}

// CheckStatus verifies that every secondary index agrees with the primary
// store.  A nil return means the pool is consistent.
func (p *UnconfirmedPool) CheckStatus() error {
	if p.txsByPriority.Len() != len(p.txsByKey) {
		return storageOutOfSync("priority index holds %d entries, primary "+
			"store holds %d", p.txsByPriority.Len(), len(p.txsByKey))
	}

	var err error
	p.txsByPriority.Ascend(func(prio FeePriority) bool {
		ptx, ok := p.txsByKey[prio.Key()]
		if !ok || ptx.Priority != prio {
			err = storageOutOfSync("priority %v has no matching "+
				"transaction", prio)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	for key, ptx := range p.txsByKey {
		for _, k := range ptx.Tx.Kernels {
			if !slices.Contains(p.txsBySignature[k.ExcessSig], key) {
				return storageOutOfSync("kernel %v of key %d is not "+
					"indexed", k.ExcessSig, key)
			}
		}
		for _, hash := range ptx.outputHashes {
			if !slices.Contains(p.txsByOutput[hash], key) {
				return storageOutOfSync("output %v of key %d is not "+
					"indexed", hash, key)
			}
		}
	}
	if err := checkIndex(p.txsBySignature, p.txsByKey); err != nil {
		return err
	}
	if err := checkIndex(p.txsByOutput, p.txsByKey); err != nil {
		return err
	}
	return checkIndex(p.txsByUniqueID, p.txsByKey)
}

// checkIndex verifies that every key referenced by a secondary index is in
// the primary store.
func checkIndex[K comparable](index map[K][]uint64,
	txsByKey map[uint64]*PrioritizedTransaction) error {

	for indexKey, keys := range index {
		if len(keys) == 0 {
			return storageOutOfSync("index entry %v is empty", indexKey)
		}
		for _, key := range keys {
			if _, ok := txsByKey[key]; !ok {
				return storageOutOfSync("index entry %v references "+
					"missing transaction key %d", indexKey, key)
			}
		}
	}
	return nil
}
