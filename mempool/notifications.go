package mempool

import (
	"fmt"

	"github.com/btcsuite/mwcd/wire"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// NotificationCallback is used for a caller to provide a callback for
// notifications about various mempool events.
type NotificationCallback func(*Notification)

// Constants for the type of a notification message.
const (
	// NTTxAccepted indicates a transaction was stored in the unconfirmed
	// pool.
	NTTxAccepted NotificationType = iota

	// NTTxRemoved indicates a transaction left the unconfirmed pool for a
	// reason other than being selected for a template.
	NTTxRemoved
)

// notificationTypeStrings is a map of notification types back to their constant
// names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTTxAccepted: "NTTxAccepted",
	NTTxRemoved:  "NTTxRemoved",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// RemovalReason describes why a transaction left the unconfirmed pool.
type RemovalReason int

// These constants describe the reasons a transaction is removed.
const (
	// RemovedPublished means the transaction was mined, double spent or
	// otherwise invalidated by a published block.
	RemovedPublished RemovalReason = iota

	// RemovedEvicted means a higher priority transaction took its place in
	// a full pool.
	RemovedEvicted

	// RemovedTimeLocked means a reorganization lowered the tip below the
	// height the transaction can be mined at.
	RemovedTimeLocked

	// RemovedRevalidationFailed means the transaction depended on an
	// output that left the pool and failed revalidation.
	RemovedRevalidationFailed
)

var removalReasonStrings = map[RemovalReason]string{
	RemovedPublished:          "published",
	RemovedEvicted:            "evicted",
	RemovedTimeLocked:         "time-locked",
	RemovedRevalidationFailed: "revalidation-failed",
}

// String returns the RemovalReason in human-readable form.
func (r RemovalReason) String() string {
	if s, ok := removalReasonStrings[r]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// NTTxRemovedData is the data sent with an NTTxRemoved notification.
type NTTxRemovedData struct {
	Tx     *wire.MsgTx
	Reason RemovalReason
}

// Notification defines notification that is sent to the caller via the callback
// function provided during the call to Subscribe and consists of a notification
// type as well as associated data that depends on the type as follows:
//   - NTTxAccepted:   *wire.MsgTx
//   - NTTxRemoved :   *NTTxRemovedData
type Notification struct {
	Type NotificationType
	Data interface{}
}

// Subscribe registers callback to receive every future notification.
// Callbacks run with the pool lock held, so they must not call back into the
// pool.
func (mp *TxPool) Subscribe(callback NotificationCallback) {
	mp.notificationsLock.Lock()
	mp.notifications = append(mp.notifications, callback)
	mp.notificationsLock.Unlock()
}

func (mp *TxPool) sendNotification(typ NotificationType, data interface{}) {
	// Generate and send the notification.
	n := Notification{Type: typ, Data: data}
	mp.notificationsLock.RLock()
	for _, callback := range mp.notifications {
		callback(&n)
	}
	mp.notificationsLock.RUnlock()
}

// notifyRemoved sends an NTTxRemoved notification for each of txs.
func (mp *TxPool) notifyRemoved(txs []*wire.MsgTx, reason RemovalReason) {
	for _, tx := range txs {
		mp.sendNotification(NTTxRemoved, &NTTxRemovedData{
			Tx:     tx,
			Reason: reason,
		})
	}
	mp.cfg.Metrics.removed(reason, len(txs))
}
