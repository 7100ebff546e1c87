// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"

	"github.com/btcsuite/mwcd/wire"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// NotificationCallback is used for a caller to provide a callback for
// notifications about various chain events.
type NotificationCallback func(*Notification)

// Constants for the type of a notification message.
const (
	// NTBlockConnected indicates the associated block was connected to the
	// main chain.
	NTBlockConnected NotificationType = iota

	// NTBlockDisconnected indicates the associated block was disconnected
	// from the main chain.
	NTBlockDisconnected

	// NTReorganization indicates that the main chain switched to a
	// different branch.
	NTReorganization
)

// notificationTypeStrings is a map of notification types back to their constant
// names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTBlockConnected:    "NTBlockConnected",
	NTBlockDisconnected: "NTBlockDisconnected",
	NTReorganization:    "NTReorganization",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// ReorganizationNtfnsData is the structure for data indicating information
// about a reorganization.  Removed holds the disconnected blocks and Added
// the newly connected ones, both ordered by ascending height.
type ReorganizationNtfnsData struct {
	Removed   []*wire.MsgBlock
	Added     []*wire.MsgBlock
	NewHeight uint64
}

// Notification defines notification that is sent to the subscribers and
// consists of a notification type as well as associated data that depends on
// the type as follows:
//   - NTBlockConnected:    *wire.MsgBlock
//   - NTBlockDisconnected: *wire.MsgBlock
//   - NTReorganization:    *ReorganizationNtfnsData
type Notification struct {
	Type NotificationType
	Data interface{}
}

// Notifier fans chain notifications out to every subscriber.  It is safe for
// concurrent access.
type Notifier struct {
	mtx       sync.RWMutex
	callbacks []NotificationCallback
}

// Subscribe registers a callback to be executed for every notification.
func (n *Notifier) Subscribe(callback NotificationCallback) {
	n.mtx.Lock()
	n.callbacks = append(n.callbacks, callback)
	n.mtx.Unlock()
}

// Send delivers a notification with the passed type and data to every
// subscriber in registration order.  Callbacks run synchronously on the
// caller's goroutine.
func (n *Notifier) Send(typ NotificationType, data interface{}) {
	note := Notification{Type: typ, Data: data}
	n.mtx.RLock()
	for _, callback := range n.callbacks {
		callback(&note)
	}
	n.mtx.RUnlock()
	log.Tracef("Sent %v notification", typ)
}
