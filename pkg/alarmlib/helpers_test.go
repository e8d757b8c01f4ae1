package alarmlib

import (
	"errors"
	"sync"
	"time"

	"github.com/wakesync/wakesync/pkg/logger"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recNotifier records emitted notifications and cleared alarm ids.
type recNotifier struct {
	mu      sync.Mutex
	notifs  []*Notification
	cleared []string
	fail    error
	panics  bool
}

func (n *recNotifier) Notify(notif *Notification) error {
	if n.panics {
		panic("notifier exploded")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.notifs = append(n.notifs, notif)
	return nil
}

func (n *recNotifier) Clear(alarmId string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cleared = append(n.cleared, alarmId)
	return nil
}

func (n *recNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifs)
}

func (n *recNotifier) last() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notifs) == 0 {
		return nil
	}
	return n.notifs[len(n.notifs)-1]
}

// recBroadcaster records published events.
type recBroadcaster struct {
	mu     sync.Mutex
	events []string
	data   []any
}

func (b *recBroadcaster) Publish(event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	b.data = append(b.data, data)
}

func (b *recBroadcaster) has(event string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e == event {
			return true
		}
	}
	return false
}

// recAudit records audit events.
type recAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (a *recAudit) Record(ev AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recAudit) typed(typ string) []AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []AuditEvent
	for _, ev := range a.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// fakeClient is one scriptable UI surface.
type fakeClient struct {
	id        string
	deliverOk bool
	delivered []string
	focused   int
}

func (c *fakeClient) Id() string { return c.id }

func (c *fakeClient) Deliver(event string, data any) error {
	if !c.deliverOk {
		return errors.New("client gone")
	}
	c.delivered = append(c.delivered, event)
	return nil
}

func (c *fakeClient) Focus() error {
	c.focused++
	return nil
}

var errNoLaunch = errors.New("no launcher")

// fakeDirectory is a scriptable client directory.
type fakeDirectory struct {
	clients []ClientHandle
	openErr error
	opened  []string
}

func (d *fakeDirectory) Clients() []ClientHandle { return d.clients }

func (d *fakeDirectory) Open(alarmId string) error {
	if d.openErr != nil {
		return d.openErr
	}
	d.opened = append(d.opened, alarmId)
	return nil
}

// newTestEngine builds an engine over a MemStore with recording
// collaborators and a fake clock pinned to base.
func newTestEngine(base time.Time) (*Engine, *MemStore, *recNotifier, *recBroadcaster, *recAudit, *fakeClock) {
	store := NewMemStore()
	clock := newFakeClock(base)
	notifier := &recNotifier{}
	bcast := &recBroadcaster{}
	audit := &recAudit{}
	e := NewEngine(logger.NewMockLogger(), store, &EngineOpts{
		Notifier:    notifier,
		Audit:       audit,
		Broadcaster: bcast,
		Clock:       clock.Now,
	})
	return e, store, notifier, bcast, audit, clock
}

// baseTime is a Wednesday at 06:00 local to most tests.
var baseTime = time.Date(2026, time.March, 4, 6, 0, 0, 0, time.UTC)
