// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/blake2b"
)

// BlockHeader defines information about a block.  Only the fields the node
// needs to order blocks are carried.
type BlockHeader struct {
	// Height is the height of the block in the chain.
	Height uint64

	// PrevBlock is the hash of the previous block header.
	PrevBlock chainhash.Hash

	// KernelRoot commits to the kernels in the block body.
	KernelRoot chainhash.Hash
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf [8 + 2*chainhash.HashSize]byte
	binary.LittleEndian.PutUint64(buf[:8], h.Height)
	copy(buf[8:], h.PrevBlock[:])
	copy(buf[8+chainhash.HashSize:], h.KernelRoot[:])
	return chainhash.Hash(blake2b.Sum256(buf[:]))
}

// MsgBlock is a block.  Its body is the cut-through aggregate of every
// transaction it contains, so it has the same shape as a transaction.
type MsgBlock struct {
	Header BlockHeader
	Body   MsgTx
}

// NewMsgBlock returns a new block with the passed header and an empty body.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header: *header,
		Body:   *NewMsgTx(),
	}
}

// AddTransaction aggregates the inputs, outputs and kernels of tx into the
// block body.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Body.TxIn = append(msg.Body.TxIn, tx.TxIn...)
	msg.Body.TxOut = append(msg.Body.TxOut, tx.TxOut...)
	msg.Body.Kernels = append(msg.Body.Kernels, tx.Kernels...)
}

// ClearTransactions removes every input, output and kernel from the block
// body.
func (msg *MsgBlock) ClearTransactions() {
	msg.Body = *NewMsgTx()
}

// BlockHash computes the block identifier hash for this block.
func (msg *MsgBlock) BlockHash() chainhash.Hash {
	return msg.Header.BlockHash()
}

// UpdateKernelRoot sets the header kernel root to the blake2b-256 hash of
// every kernel excess signature in body order.
func (msg *MsgBlock) UpdateKernelRoot() {
	h, _ := blake2b.New256(nil)
	for _, k := range msg.Body.Kernels {
		h.Write(k.ExcessSig[:])
	}
	copy(msg.Header.KernelRoot[:], h.Sum(nil))
}
