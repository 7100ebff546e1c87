// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

// TestKernelSignature ensures kernels sign their fee and lock height and
// that tampering with either invalidates the excess signature.
func TestKernelSignature(t *testing.T) {
	t.Parallel()

	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	kernel, err := NewTxKernel(250, 10, key)
	require.NoError(t, err)
	require.NoError(t, kernel.Verify())

	tampered := *kernel
	tampered.Fee++
	require.ErrorIs(t, tampered.Verify(), ErrInvalidExcessSig)

	tampered = *kernel
	tampered.LockHeight++
	require.ErrorIs(t, tampered.Verify(), ErrInvalidExcessSig)

	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	otherKernel, err := NewTxKernel(250, 10, other)
	require.NoError(t, err)
	require.NotEqual(t, kernel.ExcessSig, otherKernel.ExcessSig,
		"distinct excess keys must give distinct signatures")
	require.Len(t, kernel.ExcessSig.String(), SignatureSize*2)
}
