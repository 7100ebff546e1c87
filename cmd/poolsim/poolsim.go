// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"github.com/btcsuite/mwcd/blockchain"
	"github.com/btcsuite/mwcd/mempool"
	"github.com/btcsuite/mwcd/mining"
	"github.com/btcsuite/mwcd/wire"
	"github.com/pkg/errors"
)

// simulator generates signed transactions and drives a transaction pool with
// them the way a base node would.
type simulator struct {
	cfg     *config
	rng     *rand.Rand
	weight  blockchain.TransactionWeight
	chain   blockchain.Notifier
	tip     *blockchain.TipTracker
	pool    *mempool.TxPool
	tmplGen *mining.BlkTmplGenerator

	// unspent holds the outputs created by submitted transactions that no
	// generated transaction spends yet.  spent holds every output hash a
	// generated transaction spends.
	unspent []chainhash.Hash
	spent   []chainhash.Hash

	submitted []*wire.MsgTx
	responses map[mempool.TxStorageResponse]int
	removed   map[mempool.RemovalReason]int
}

// newSimulator returns a simulator whose pool follows its own chain.
func newSimulator(cfg *config) (*simulator, error) {
	sim := &simulator{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		weight:    blockchain.DefaultTransactionWeight(),
		tip:       blockchain.NewTipTracker(blockchain.BestState{}),
		responses: make(map[mempool.TxStorageResponse]int),
		removed:   make(map[mempool.RemovalReason]int),
	}

	policy := mempool.DefaultPolicy()
	policy.StorageCapacity = cfg.MaxPoolTxs
	pool, err := mempool.New(&mempool.Config{
		Policy:     policy,
		Weight:     sim.weight.Calculate,
		BestHeight: sim.tip.BestHeight,
		Revalidate: func(tx *wire.MsgTx) error {
			for _, kernel := range tx.Kernels {
				if err := kernel.Verify(); err != nil {
					return err
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	pool.Subscribe(sim.handlePoolNotification)
	sim.pool = pool

	miningPolicy := mining.DefaultPolicy()
	sim.tmplGen = mining.NewBlkTmplGenerator(&miningPolicy,
		sim.weight.Calculate, pool, func() (uint64, chainhash.Hash) {
			best := sim.tip.BestSnapshot()
			return best.Height, best.Hash
		})

	sim.chain.Subscribe(sim.tip.HandleNotification)
	sim.chain.Subscribe(sim.handleChainNotification)
	return sim, nil
}

// handleChainNotification feeds chain events to the pool.
func (sim *simulator) handleChainNotification(n *blockchain.Notification) {
	switch n.Type {
	case blockchain.NTBlockConnected:
		sim.pool.ProcessPublishedBlock(n.Data.(*wire.MsgBlock))
	case blockchain.NTBlockDisconnected:
		sim.pool.ProcessReorg([]*wire.MsgBlock{n.Data.(*wire.MsgBlock)}, nil)
	}
}

// handlePoolNotification tallies the transactions leaving the pool.
func (sim *simulator) handlePoolNotification(n *mempool.Notification) {
	if n.Type != mempool.NTTxRemoved {
		return
	}
	data := n.Data.(*mempool.NTTxRemovedData)
	sim.removed[data.Reason]++
}

// percent returns true pct percent of the time.
func (sim *simulator) percent(pct int) bool {
	return sim.rng.Intn(100) < pct
}

// newOutput returns an output with a random commitment.
func (sim *simulator) newOutput() *wire.TxOut {
	var commitment [wire.CommitmentSize]byte
	commitment[0] = 0x08
	sim.rng.Read(commitment[1:])
	return wire.NewTxOut(commitment, nil)
}

// newKernel returns a kernel signed with a random excess key.
func (sim *simulator) newKernel(fee wire.Amount) (*wire.TxKernel, error) {
	var keyBytes [32]byte
	sim.rng.Read(keyBytes[:])
	privKey, _ := btcec.PrivKeyFromBytes(keyBytes[:])
	return wire.NewTxKernel(fee, 0, privKey)
}

// pickSpend returns the hash of the output the next transaction spends.
func (sim *simulator) pickSpend() chainhash.Hash {
	switch {
	case len(sim.spent) > 0 && sim.percent(sim.cfg.DoubleSpendPercent):
		return sim.spent[sim.rng.Intn(len(sim.spent))]

	case len(sim.unspent) > 0 && sim.percent(sim.cfg.ChainPercent):
		i := sim.rng.Intn(len(sim.unspent))
		hash := sim.unspent[i]
		sim.unspent[i] = sim.unspent[len(sim.unspent)-1]
		sim.unspent = sim.unspent[:len(sim.unspent)-1]
		return hash

	default:
		// An output confirmed on chain.
		return sim.newOutput().Hash()
	}
}

// generateTx returns a new signed transaction with one or two inputs and
// outputs.
func (sim *simulator) generateTx() (*wire.MsgTx, error) {
	tx := wire.NewMsgTx()
	numInputs, numOutputs := 1+sim.rng.Intn(2), 1+sim.rng.Intn(2)
	for i := 0; i < numInputs; i++ {
		hash := sim.pickSpend()
		if i > 0 && tx.TxIn[0].OutputHash == hash {
			continue
		}
		tx.AddTxIn(wire.NewTxIn(&hash, 0))
		sim.spent = append(sim.spent, hash)
	}
	for i := 0; i < numOutputs; i++ {
		tx.AddTxOut(sim.newOutput())
	}

	fee := wire.Amount(1 + sim.rng.Int63n(int64(sim.cfg.MaxFee)))
	kernel, err := sim.newKernel(fee)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sign kernel")
	}
	tx.AddKernel(kernel)
	return tx, nil
}

// submitTransactions generates and submits the configured number of
// transactions.
func (sim *simulator) submitTransactions() error {
	for i := 0; i < sim.cfg.NumTxs; i++ {
		tx, err := sim.generateTx()
		if err != nil {
			return err
		}
		resp := sim.pool.ProcessTransaction(tx, nil)
		sim.responses[resp]++
		sim.submitted = append(sim.submitted, tx)
		if resp == mempool.TxStorageUnconfirmedPool {
			sim.unspent = append(sim.unspent, tx.OutputHashes()...)
		}
	}
	return nil
}

// mineBlock builds a block template from the pool and connects it.
func (sim *simulator) mineBlock(w io.Writer) (*wire.MsgBlock, error) {
	template, err := sim.tmplGen.NewBlockTemplate()
	if err != nil {
		return nil, err
	}
	block := template.Block
	fmt.Fprintf(w, "Mined block %d: %d transactions, %d weight, %v fees "+
		"(%.6f coins)\n", block.Header.Height, len(template.Txs),
		template.TotalWeight, template.TotalFees, template.TotalFees.ToCoin())

	sim.chain.Send(blockchain.NTBlockConnected, block)
	return block, nil
}

// printFeeStats writes the fee statistics of the unconfirmed pool.
func (sim *simulator) printFeeStats(w io.Writer) {
	stats := sim.pool.FeePerGramStats(sim.cfg.FeeBuckets,
		mining.DefaultPolicy().BlockMaxWeight)
	if len(stats) == 0 {
		fmt.Fprintln(w, "No fee statistics: the unconfirmed pool is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Bucket\tMin fee/gram\tAvg fee/gram\tMax fee/gram")
	for _, stat := range stats {
		fmt.Fprintf(tw, "%d\t%v\t%v\t%v\n", stat.Order, stat.MinFeePerGram,
			stat.AvgFeePerGram, stat.MaxFeePerGram)
	}
	tw.Flush()
}

// printPoolStats writes the pool sizes and the tallies of the run.
func (sim *simulator) printPoolStats(w io.Writer) {
	stats := sim.pool.Stats()
	fmt.Fprintf(w, "Unconfirmed pool: %d transactions, %d weight\n",
		stats.UnconfirmedTxs, stats.UnconfirmedWeight)
	fmt.Fprintf(w, "Reorg pool: %d transactions\n", stats.ReorgTxs)

	responses := make([]mempool.TxStorageResponse, 0, len(sim.responses))
	for resp := range sim.responses {
		responses = append(responses, resp)
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i] < responses[j]
	})
	for _, resp := range responses {
		fmt.Fprintf(w, "  %v: %d\n", resp, sim.responses[resp])
	}

	reasons := make([]mempool.RemovalReason, 0, len(sim.removed))
	for reason := range sim.removed {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool {
		return reasons[i] < reasons[j]
	})
	for _, reason := range reasons {
		fmt.Fprintf(w, "  removed (%v): %d\n", reason, sim.removed[reason])
	}
}

// verifyPool cross checks the pool lookups against the submitted
// transactions and its internal consistency.
func (sim *simulator) verifyPool() error {
	if err := sim.pool.CheckStatus(); err != nil {
		return err
	}

	state := sim.pool.State()
	sigs := make([]wire.Signature, 0, len(state.UnconfirmedPool))
	for _, tx := range state.UnconfirmedPool {
		sig := tx.FirstExcessSig()
		if resp := sim.pool.HasTxWithExcessSig(sig); resp !=
			mempool.TxStorageUnconfirmedPool {

			return errors.Errorf("transaction %v listed in the pool "+
				"state reported as %v", sig, resp)
		}
		sigs = append(sigs, sig)
	}
	found, missing := sim.pool.RetrieveByExcessSigs(sigs)
	if len(found) != len(sigs) || len(missing) != 0 {
		return errors.Errorf("retrieved %d of %d pool transactions",
			len(found), len(sigs))
	}
	for _, sig := range state.ReorgPool {
		if resp := sim.pool.HasTxWithExcessSig(sig); resp ==
			mempool.TxStorageNotStored {

			return errors.Errorf("reorg pool transaction %v not found",
				sig)
		}
	}
	return nil
}

// run executes the simulation and writes its report to w.
func (sim *simulator) run(w io.Writer) error {
	if err := sim.submitTransactions(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Submitted %d transactions\n", len(sim.submitted))
	sim.printFeeStats(w)

	var last *wire.MsgBlock
	for i := 0; i < sim.cfg.NumBlocks; i++ {
		block, err := sim.mineBlock(w)
		if err != nil {
			return errors.Wrap(err, "unable to mine block")
		}
		last = block
	}

	if sim.cfg.Reorg && last != nil {
		sim.chain.Send(blockchain.NTBlockDisconnected, last)
		fmt.Fprintf(w, "Disconnected block %d\n", last.Header.Height)
	}

	sim.printFeeStats(w)
	sim.printPoolStats(w)
	return sim.verifyPool()
}

// useLogger routes the log output of the pool packages to stderr.
func useLogger(level string) {
	backend := btclog.NewBackend(os.Stderr)
	lvl, _ := btclog.LevelFromString(level)
	for subsystem, useLogger := range map[string]func(btclog.Logger){
		"CHAN": blockchain.UseLogger,
		"MINR": mining.UseLogger,
		"TXMP": mempool.UseLogger,
	} {
		logger := backend.Logger(subsystem)
		logger.SetLevel(lvl)
		useLogger(logger)
	}
}

func main() {
	cfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	useLogger(cfg.DebugLevel)

	sim, err := newSimulator(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to create simulator:", err)
		os.Exit(1)
	}
	if err := sim.run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Simulation failed:", err)
		os.Exit(1)
	}
}
