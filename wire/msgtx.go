// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/blake2b"
)

const (
	// CommitmentSize is the size in bytes of a serialized output
	// commitment.
	CommitmentSize = 33

	// MaxUniqueIDSize is the maximum number of bytes an output unique id
	// may carry.
	MaxUniqueIDSize = 64

	// MaxScriptSize is the maximum number of bytes an output script may
	// carry.  It is bounded by the two byte length prefix.
	MaxScriptSize = math.MaxUint16
)

// Output feature flags.
const (
	// OutputFlagCoinbase marks a coinbase output.
	OutputFlagCoinbase uint8 = 1 << iota

	// OutputFlagAsset marks an output that mints or carries a unique asset.
	OutputFlagAsset
)

// OutputFeatures holds the consensus relevant features attached to a
// transaction output.
type OutputFeatures struct {
	// Flags is a bitfield of OutputFlag values.
	Flags uint8

	// Maturity is the minimum block height at which the output may be
	// spent.
	Maturity uint64

	// UniqueID optionally identifies a unique asset minted by the output.
	// At most one live output per block may carry a given id.
	UniqueID []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// output features.
func (f *OutputFeatures) SerializeSize() int {
	// Flags 1 byte + maturity 8 bytes + unique id length 1 byte + unique id.
	return 1 + 8 + 1 + len(f.UniqueID)
}

// Serialize encodes the output features to w.  It returns a *MessageError
// when the unique id is longer than MaxUniqueIDSize.
func (f *OutputFeatures) Serialize(w io.Writer) error {
	if len(f.UniqueID) > MaxUniqueIDSize {
		str := fmt.Sprintf("unique id is %d bytes, max %d",
			len(f.UniqueID), MaxUniqueIDSize)
		return messageError("OutputFeatures.Serialize", str)
	}
	return f.encode(w)
}

// encode writes the output features to w without checking their limits.
func (f *OutputFeatures) encode(w io.Writer) error {
	var buf [9]byte
	buf[0] = f.Flags
	binary.LittleEndian.PutUint64(buf[1:], f.Maturity)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	if _, err := w.Write([]byte{uint8(len(f.UniqueID))}); err != nil {
		return err
	}
	_, err := w.Write(f.UniqueID)
	return err
}

// TxIn defines a transaction input.  An input references the output it
// spends by the output's hash.
type TxIn struct {
	// OutputHash is the hash of the output being spent.
	OutputHash chainhash.Hash

	// Maturity is the maturity height of the output being spent.
	Maturity uint64
}

// NewTxIn returns a new transaction input spending the output with the
// provided hash.
func NewTxIn(outputHash *chainhash.Hash, maturity uint64) *TxIn {
	return &TxIn{
		OutputHash: *outputHash,
		Maturity:   maturity,
	}
}

// TxOut defines a transaction output.
type TxOut struct {
	Commitment [CommitmentSize]byte
	Features   OutputFeatures
	Script     []byte
}

// NewTxOut returns a new transaction output with the provided commitment
// and default features.
func NewTxOut(commitment [CommitmentSize]byte, script []byte) *TxOut {
	return &TxOut{
		Commitment: commitment,
		Script:     script,
	}
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	return CommitmentSize + t.Features.SerializeSize() + 2 + len(t.Script)
}

// Serialize encodes the transaction output to w.  It returns a
// *MessageError when the unique id or the script exceeds its limit.
func (t *TxOut) Serialize(w io.Writer) error {
	if len(t.Script) > MaxScriptSize {
		str := fmt.Sprintf("script is %d bytes, max %d", len(t.Script),
			MaxScriptSize)
		return messageError("TxOut.Serialize", str)
	}
	if len(t.Features.UniqueID) > MaxUniqueIDSize {
		str := fmt.Sprintf("unique id is %d bytes, max %d",
			len(t.Features.UniqueID), MaxUniqueIDSize)
		return messageError("TxOut.Serialize", str)
	}
	return t.encode(w)
}

// encode writes the transaction output to w without checking its limits.
// Length prefixes of oversized fields are truncated while the field bytes
// are written in full.
func (t *TxOut) encode(w io.Writer) error {
	if _, err := w.Write(t.Commitment[:]); err != nil {
		return err
	}
	if err := t.Features.encode(w); err != nil {
		return err
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(t.Script)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(t.Script)
	return err
}

// Hash returns the blake2b-256 hash of the encoded output.  This is the
// identity inputs use to reference the output.  It is defined for outputs
// that Serialize rejects as well.
func (t *TxOut) Hash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, t.SerializeSize()))
	// Writes to a bytes.Buffer never fail.
	_ = t.encode(buf)
	return chainhash.Hash(blake2b.Sum256(buf.Bytes()))
}

// FeaturesAndScriptSize returns the number of serialized bytes taken by the
// output features and script.  It is an input to the weight calculation.
func (t *TxOut) FeaturesAndScriptSize() int {
	return t.Features.SerializeSize() + len(t.Script)
}

// MsgTx is a transaction: an aggregate body of inputs, outputs and kernels.
// Mined transactions are cut-through into the block body, so a kernel's
// excess signature is the only stable identity a transaction has.
type MsgTx struct {
	TxIn    []*TxIn
	TxOut   []*TxOut
	Kernels []*TxKernel
}

// NewMsgTx returns a new transaction with no inputs, outputs or kernels.
func NewMsgTx() *MsgTx {
	return &MsgTx{
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
		Kernels: make([]*TxKernel, 0, 1),
	}
}

// defaultTxInOutAlloc is the default size used for the backing array for
// transaction inputs and outputs.
const defaultTxInOutAlloc = 4

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// AddKernel adds a kernel to the message.
func (msg *MsgTx) AddKernel(k *TxKernel) {
	msg.Kernels = append(msg.Kernels, k)
}

// TotalFees returns the sum of the fees of every kernel in the transaction.
func (msg *MsgTx) TotalFees() Amount {
	var fees Amount
	for _, k := range msg.Kernels {
		fees += k.Fee
	}
	return fees
}

// MinSpendableHeight returns the lowest block height at which the
// transaction may be included in a block.  It is the greatest of every kernel
// lock height and every spent output maturity.
func (msg *MsgTx) MinSpendableHeight() uint64 {
	var height uint64
	for _, k := range msg.Kernels {
		if k.LockHeight > height {
			height = k.LockHeight
		}
	}
	for _, in := range msg.TxIn {
		if in.Maturity > height {
			height = in.Maturity
		}
	}
	return height
}

// FeaturesAndScriptsSize returns the total serialized size of the features
// and scripts of every output.
func (msg *MsgTx) FeaturesAndScriptsSize() int {
	var n int
	for _, out := range msg.TxOut {
		n += out.FeaturesAndScriptSize()
	}
	return n
}

// OutputHashes returns the hashes of every output the transaction produces.
func (msg *MsgTx) OutputHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, 0, len(msg.TxOut))
	for _, out := range msg.TxOut {
		hashes = append(hashes, out.Hash())
	}
	return hashes
}

// FirstExcessSig returns the excess signature of the first kernel, or the
// zero signature when the transaction has no kernels.  It is used to name a
// transaction in log output.
func (msg *MsgTx) FirstExcessSig() Signature {
	if len(msg.Kernels) == 0 {
		return Signature{}
	}
	return msg.Kernels[0].ExcessSig
}

// Copy creates a deep copy of the transaction.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		TxIn:    make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:   make([]*TxOut, 0, len(msg.TxOut)),
		Kernels: make([]*TxKernel, 0, len(msg.Kernels)),
	}
	for _, in := range msg.TxIn {
		newIn := *in
		newTx.TxIn = append(newTx.TxIn, &newIn)
	}
	for _, out := range msg.TxOut {
		newOut := *out
		if out.Script != nil {
			newOut.Script = append([]byte(nil), out.Script...)
		}
		if out.Features.UniqueID != nil {
			newOut.Features.UniqueID = append([]byte(nil),
				out.Features.UniqueID...)
		}
		newTx.TxOut = append(newTx.TxOut, &newOut)
	}
	for _, k := range msg.Kernels {
		newKernel := *k
		newTx.Kernels = append(newTx.Kernels, &newKernel)
	}
	return &newTx
}
