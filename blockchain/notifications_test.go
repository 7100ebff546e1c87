// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/btcsuite/mwcd/wire"
	"github.com/stretchr/testify/require"
)

// TestNotificationTypeStringer tests the stringized output for the
// NotificationType type.
func TestNotificationTypeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   NotificationType
		want string
	}{
		{NTBlockConnected, "NTBlockConnected"},
		{NTBlockDisconnected, "NTBlockDisconnected"},
		{NTReorganization, "NTReorganization"},
		{0xffff, "Unknown Notification Type (65535)"},
	}

	for i, test := range tests {
		require.Equal(t, test.want, test.in.String(), "test #%d", i)
	}
}

// TestNotifierOrdering ensures every subscriber receives each notification in
// registration order.
func TestNotifierOrdering(t *testing.T) {
	t.Parallel()

	var n Notifier
	var got []string
	n.Subscribe(func(note *Notification) {
		got = append(got, "first:"+note.Type.String())
	})
	n.Subscribe(func(note *Notification) {
		got = append(got, "second:"+note.Type.String())
	})

	block := wire.NewMsgBlock(&wire.BlockHeader{Height: 1})
	n.Send(NTBlockConnected, block)
	n.Send(NTReorganization, &ReorganizationNtfnsData{NewHeight: 1})

	require.Equal(t, []string{
		"first:NTBlockConnected",
		"second:NTBlockConnected",
		"first:NTReorganization",
		"second:NTReorganization",
	}, got)
}
