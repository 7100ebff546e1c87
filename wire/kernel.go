// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/blake2b"
)

const (
	// SignatureSize is the size in bytes of a serialized kernel excess
	// signature.
	SignatureSize = schnorr.SignatureSize

	// ExcessSize is the size in bytes of a serialized kernel excess.
	ExcessSize = schnorr.PubKeyBytesLen
)

// ErrInvalidExcessSig is returned by TxKernel.Verify when the excess
// signature does not sign the kernel message under the kernel excess.
var ErrInvalidExcessSig = errors.New("invalid kernel excess signature")

// Signature is a serialized kernel excess signature.  It is the canonical
// identity of a kernel and is comparable, so it can key maps directly.
type Signature [SignatureSize]byte

// String returns the signature as a hexadecimal string.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// TxKernel is a transaction kernel.  It carries the fee and lock height of
// the transaction together with the excess and a signature proving the
// excess is a valid public key.
type TxKernel struct {
	Fee        Amount
	LockHeight uint64
	Excess     [ExcessSize]byte
	ExcessSig  Signature
}

// kernelMessage returns the message committed to by a kernel signature.
func kernelMessage(fee Amount, lockHeight uint64) chainhash.Hash {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(fee))
	binary.LittleEndian.PutUint64(buf[8:], lockHeight)
	return chainhash.Hash(blake2b.Sum256(buf[:]))
}

// NewTxKernel creates a kernel for the given fee and lock height and signs it
// with the provided excess key.
func NewTxKernel(fee Amount, lockHeight uint64, excessKey *btcec.PrivateKey) (*TxKernel, error) {
	msg := kernelMessage(fee, lockHeight)
	sig, err := schnorr.Sign(excessKey, msg[:])
	if err != nil {
		return nil, err
	}

	kernel := &TxKernel{
		Fee:        fee,
		LockHeight: lockHeight,
	}
	copy(kernel.Excess[:], schnorr.SerializePubKey(excessKey.PubKey()))
	copy(kernel.ExcessSig[:], sig.Serialize())
	return kernel, nil
}

// Verify checks the kernel excess signature.
func (k *TxKernel) Verify() error {
	pubKey, err := schnorr.ParsePubKey(k.Excess[:])
	if err != nil {
		return err
	}
	sig, err := schnorr.ParseSignature(k.ExcessSig[:])
	if err != nil {
		return err
	}
	msg := kernelMessage(k.Fee, k.LockHeight)
	if !sig.Verify(msg[:], pubKey) {
		return ErrInvalidExcessSig
	}
	return nil
}
