package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/logger"
)

// replyTimeout bounds a single client delivery so an unresponsive UI
// surface cannot stall the dispatcher.
const replyTimeout = 10 * time.Second

// Pool tracks every subscribed UI client connection. It backs both the
// fire-and-forget broadcast fan-out and the dispatcher's "reach one
// live client" path.
type Pool struct {
	mu      sync.RWMutex
	clients map[string]*SyncConn
	log     logger.Logger

	// LaunchFunc, when set, opens a new UI surface pointed at the
	// given alarm when no connected client is reachable.
	LaunchFunc func(alarmId string) error
}

func NewPool(l logger.Logger) *Pool {
	return &Pool{
		clients: make(map[string]*SyncConn),
		log:     l,
	}
}

// Subscribe registers a client connection for broadcasts and returns
// its client id.
func (p *Pool) Subscribe(conn *SyncConn) string {
	id := uuid.NewString()
	p.mu.Lock()
	p.clients[id] = conn
	p.mu.Unlock()
	return id
}

// Unsubscribe drops the connection holding the given client id.
func (p *Pool) Unsubscribe(id string) {
	p.mu.Lock()
	delete(p.clients, id)
	p.mu.Unlock()
}

// Drop removes a connection from the pool regardless of id, used when
// a connection closes.
func (p *Pool) Drop(conn *SyncConn) {
	p.mu.Lock()
	for id, c := range p.clients {
		if c == conn {
			delete(p.clients, id)
		}
	}
	p.mu.Unlock()
}

// Count returns the number of subscribed clients.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

// BroadcastAll writes the framed payload to every subscribed client.
// Fire-and-forget: write failures drop the client and are not
// surfaced to the mutating operation that triggered the broadcast.
func (p *Pool) BroadcastAll(data []byte) {
	p.mu.RLock()
	conns := make(map[string]*SyncConn, len(p.clients))
	for id, c := range p.clients {
		conns[id] = c
	}
	p.mu.RUnlock()

	for id, conn := range conns {
		conn.Conn.SetWriteDeadline(time.Now().Add(replyTimeout))
		if err := conn.Write(data); err != nil {
			p.log.Warning("broadcast to client %s failed, dropping: %v", id, err)
			p.Unsubscribe(id)
		}
		conn.Conn.SetWriteDeadline(time.Time{})
	}
}

// poolClient adapts one pooled connection to the engine's
// ClientHandle.
type poolClient struct {
	id   string
	conn *SyncConn
	pool *Pool
}

func (c *poolClient) Id() string { return c.id }

func (c *poolClient) Deliver(event string, data any) error {
	c.conn.Conn.SetWriteDeadline(time.Now().Add(replyTimeout))
	defer c.conn.Conn.SetWriteDeadline(time.Time{})
	if err := c.conn.Write(MakeResult(common.UpdateType(event), data)); err != nil {
		c.pool.Unsubscribe(c.id)
		return err
	}
	return nil
}

func (c *poolClient) Focus() error {
	c.conn.Conn.SetWriteDeadline(time.Now().Add(replyTimeout))
	defer c.conn.Conn.SetWriteDeadline(time.Time{})
	return c.conn.Write(MakeResult(common.EVENT_FOCUS_CLIENT, map[string]any{"client_id": c.id}))
}

// Clients returns handles for every subscribed client.
func (p *Pool) Clients() []alarmlib.ClientHandle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	handles := make([]alarmlib.ClientHandle, 0, len(p.clients))
	for id, conn := range p.clients {
		handles = append(handles, &poolClient{id: id, conn: conn, pool: p})
	}
	return handles
}

// Open launches a new UI surface at the alarm, if a launcher is
// configured.
func (p *Pool) Open(alarmId string) error {
	if p.LaunchFunc == nil {
		return errNoLauncher
	}
	return p.LaunchFunc(alarmId)
}

var _ alarmlib.ClientDirectory = (*Pool)(nil)
