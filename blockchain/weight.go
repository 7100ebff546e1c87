// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/mwcd/wire"
)

const (
	// MaxBlockWeight defines the maximum weight of a block body.  The
	// weight of a block is the sum of the weights of its kernels, inputs
	// and outputs as calculated by TransactionWeight.
	MaxBlockWeight = 127795

	// DefaultKernelWeight is the weight of a single kernel.
	DefaultKernelWeight = 10

	// DefaultInputWeight is the weight of a single input.
	DefaultInputWeight = 8

	// DefaultOutputWeight is the weight of a single output, excluding its
	// features and script.
	DefaultOutputWeight = 53

	// DefaultFeaturesAndScriptsBytesPerGram is the number of feature and
	// script bytes that cost one unit of weight.
	DefaultFeaturesAndScriptsBytesPerGram = 16
)

// TransactionWeight holds the parameters of the weight metric.  The weight of
// a transaction combines its serialized size and the resources needed to
// validate it, and is the denominator of the fee-per-gram priority metric.
type TransactionWeight struct {
	KernelWeight                   uint64
	InputWeight                    uint64
	OutputWeight                   uint64
	FeaturesAndScriptsBytesPerGram uint64
}

// DefaultTransactionWeight returns the weight parameters in force on every
// network.
func DefaultTransactionWeight() TransactionWeight {
	return TransactionWeight{
		KernelWeight:                   DefaultKernelWeight,
		InputWeight:                    DefaultInputWeight,
		OutputWeight:                   DefaultOutputWeight,
		FeaturesAndScriptsBytesPerGram: DefaultFeaturesAndScriptsBytesPerGram,
	}
}

// CalculateBodyWeight returns the weight of a body with the given number of
// kernels, inputs and outputs whose outputs carry featuresAndScriptsBytes
// bytes of features and scripts in total.
func (w TransactionWeight) CalculateBodyWeight(numKernels, numInputs, numOutputs,
	featuresAndScriptsBytes int) uint64 {

	weight := uint64(numKernels)*w.KernelWeight +
		uint64(numInputs)*w.InputWeight +
		uint64(numOutputs)*w.OutputWeight

	// Round the feature and script bytes up to the next whole gram.
	if w.FeaturesAndScriptsBytesPerGram > 0 && featuresAndScriptsBytes > 0 {
		n := uint64(featuresAndScriptsBytes)
		weight += (n + w.FeaturesAndScriptsBytesPerGram - 1) /
			w.FeaturesAndScriptsBytesPerGram
	}

	return weight
}

// Calculate returns the weight of the passed transaction.
func (w TransactionWeight) Calculate(tx *wire.MsgTx) uint64 {
	return w.CalculateBodyWeight(len(tx.Kernels), len(tx.TxIn),
		len(tx.TxOut), tx.FeaturesAndScriptsSize())
}
