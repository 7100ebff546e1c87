// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/mwcd/wire"
	"github.com/stretchr/testify/require"
)

// TestCalculateBodyWeight ensures the weight metric charges every body
// component and rounds feature bytes up to whole grams.
func TestCalculateBodyWeight(t *testing.T) {
	t.Parallel()

	w := DefaultTransactionWeight()
	tests := []struct {
		name                     string
		kernels, inputs, outputs int
		featuresAndScriptsBytes  int
		want                     uint64
	}{
		{name: "empty", want: 0},
		{name: "kernel only", kernels: 1, want: 10},
		{name: "1-2-1", kernels: 1, inputs: 2, outputs: 1, want: 10 + 16 + 53},
		{name: "one feature byte", kernels: 1, outputs: 1,
			featuresAndScriptsBytes: 1, want: 10 + 53 + 1},
		{name: "exact gram", kernels: 1, outputs: 1,
			featuresAndScriptsBytes: 32, want: 10 + 53 + 2},
		{name: "partial gram", kernels: 1, outputs: 1,
			featuresAndScriptsBytes: 33, want: 10 + 53 + 3},
	}

	for _, test := range tests {
		got := w.CalculateBodyWeight(test.kernels, test.inputs,
			test.outputs, test.featuresAndScriptsBytes)
		require.Equal(t, test.want, got, test.name)
	}
}

// TestCalculateTransactionWeight ensures the transaction weight matches the
// body weight of its components.
func TestCalculateTransactionWeight(t *testing.T) {
	t.Parallel()

	tx := wire.NewMsgTx()
	tx.AddTxIn(wire.NewTxIn(&chainhash.Hash{0x01}, 0))
	tx.AddTxIn(wire.NewTxIn(&chainhash.Hash{0x02}, 0))
	tx.AddTxOut(wire.NewTxOut([wire.CommitmentSize]byte{0x03}, nil))
	tx.AddKernel(&wire.TxKernel{Fee: 100})

	w := DefaultTransactionWeight()
	want := w.CalculateBodyWeight(1, 2, 1, tx.FeaturesAndScriptsSize())
	require.Equal(t, want, w.Calculate(tx))

	// Ten bytes of features round up to one gram.
	require.EqualValues(t, 10+16+53+1, w.Calculate(tx))
}
