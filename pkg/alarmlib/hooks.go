package alarmlib

import (
	"time"

	"github.com/google/uuid"

	"github.com/wakesync/wakesync/pkg/logger"
)

// Broadcast event names pushed after every mutating operation. The
// wire layer forwards them to connected clients verbatim.
const (
	EventAlarmScheduled = "alarm_scheduled"
	EventAlarmCancelled = "alarm_cancelled"
	EventAlarmTriggered = "alarm_triggered"
	EventAlarmDismissed = "alarm_dismissed"
	EventAlarmSnoozed   = "alarm_snoozed"
	EventAlarmStateSync = "alarm_state_sync"
	EventNetworkStatus  = "network_status"
)

// Notification is the display payload handed to the platform's
// user-alert mechanism when an alarm fires.
type Notification struct {
	AlarmId string   `json:"alarm_id"`
	Title   string   `json:"title"`
	Body    string   `json:"body"`
	Sound   string   `json:"sound,omitempty"`
	Actions []string `json:"actions,omitempty"`
	// Late marks a delivery replayed by the recovery engine.
	Late bool `json:"late,omitempty"`
}

// Notifier emits user-visible alerts. Implementations are side-effect
// collaborators; a Notify failure never aborts the firing sequence.
type Notifier interface {
	Notify(n *Notification) error
	// Clear removes any pending alert tagged for the alarm.
	Clear(alarmId string) error
}

// PermissionProvider reports and requests notification permission.
type PermissionProvider interface {
	Granted() bool
	// Request asks the user for permission, reporting the outcome.
	// Firing proceeds best-effort regardless.
	Request() bool
}

// ClientHandle is one connected UI surface (tab, window).
type ClientHandle interface {
	Id() string
	// Deliver posts a structured event to the client.
	Deliver(event string, data any) error
	// Focus brings the client to the foreground.
	Focus() error
}

// ClientDirectory enumerates connected UI clients and can open a new
// one when none are reachable.
type ClientDirectory interface {
	Clients() []ClientHandle
	// Open launches a new UI surface pointed at the alarm.
	Open(alarmId string) error
}

// AuditEvent is an opaque record handed to the analytics sink.
type AuditEvent struct {
	Id      string         `json:"id"`
	Type    string         `json:"type"`
	AlarmId string         `json:"alarm_id,omitempty"`
	At      time.Time      `json:"at"`
	Details map[string]any `json:"details,omitempty"`
}

// AuditSink accepts audit events. Implementations must not block.
type AuditSink interface {
	Record(ev AuditEvent)
}

// FeatureGate answers "may this alarm use feature X" for premium
// scheduling features. Billing lives elsewhere.
type FeatureGate interface {
	MayUseFeature(userId, featureId string) bool
}

// Broadcaster publishes schedule-state changes to every connected UI
// surface, fire-and-forget.
type Broadcaster interface {
	Publish(event string, data any)
}

func newAuditEvent(typ, alarmId string, at time.Time, details map[string]any) AuditEvent {
	return AuditEvent{
		Id:      uuid.NewString(),
		Type:    typ,
		AlarmId: alarmId,
		At:      at,
		Details: details,
	}
}

// Default collaborator implementations.

type nopBroadcaster struct{}

func (nopBroadcaster) Publish(string, any) {}

type allowAllGate struct{}

func (allowAllGate) MayUseFeature(string, string) bool { return true }

type grantedPermissions struct{}

func (grantedPermissions) Granted() bool { return true }
func (grantedPermissions) Request() bool { return true }

// logNotifier writes alerts to the daemon log. It stands in for a real
// platform notifier on headless deployments.
type logNotifier struct {
	log logger.Logger
}

func (n *logNotifier) Notify(notif *Notification) error {
	n.log.Info("ALARM %s: %s: %s (late=%v)", notif.AlarmId, notif.Title, notif.Body, notif.Late)
	return nil
}

func (n *logNotifier) Clear(alarmId string) error {
	return nil
}

// logAuditSink records audit events to the daemon log.
type logAuditSink struct {
	log logger.Logger
}

func (s *logAuditSink) Record(ev AuditEvent) {
	s.log.Info("audit %s alarm=%s at=%s details=%v", ev.Type, ev.AlarmId, ev.At.Format(time.RFC3339), ev.Details)
}
