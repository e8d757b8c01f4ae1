package server

import (
	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
)

// Broadcast fans engine events out to every connected surface: the
// framed-socket client pool and the WebSocket RPC push notifier.
type Broadcast struct {
	pool     *Pool
	notifier *RPCNotifier
}

// NewBroadcast creates a broadcaster over the given pool and notifier.
// Either may be nil; nil surfaces are skipped.
func NewBroadcast(pool *Pool, notifier *RPCNotifier) *Broadcast {
	return &Broadcast{pool: pool, notifier: notifier}
}

// Publish delivers an event to all connected clients. Delivery is best
// effort; failed clients are dropped by the underlying surfaces.
func (b *Broadcast) Publish(event string, data any) {
	if b.pool != nil {
		b.pool.BroadcastAll(MakeResult(common.UpdateType(event), data))
	}
	if b.notifier != nil {
		b.notifier.Broadcast(event, data)
	}
}

var _ alarmlib.Broadcaster = (*Broadcast)(nil)
