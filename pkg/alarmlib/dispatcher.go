package alarmlib

import (
	"fmt"
	"runtime/debug"
	"time"
)

// DeliveryOutcome describes how a firing reached the user's UI.
type DeliveryOutcome string

const (
	// DeliveredToClient: an open client received the trigger event.
	DeliveredToClient DeliveryOutcome = "delivered_to_client"
	// OpenedClient: no client was reachable, a new one was opened.
	OpenedClient DeliveryOutcome = "opened_client"
	// DeliveryFailed: no client reachable and opening one failed.
	DeliveryFailed DeliveryOutcome = "delivery_failed"
	// NoClientDirectory: the daemon runs without a client surface.
	NoClientDirectory DeliveryOutcome = "no_client_directory"
)

// TriggeredAlarm is the payload delivered to clients when an alarm
// fires.
type TriggeredAlarm struct {
	Alarm   *Alarm    `json:"alarm"`
	FiredAt time.Time `json:"fired_at"`
	Late    bool      `json:"late,omitempty"`
}

// fire runs the delivery sequence for one firing: clear armed state,
// ensure permission, emit the alert, reach a client, audit, then
// either re-arm the recurrence or mark the one-time alarm completed.
// No failure in any step aborts the remaining steps, and nothing
// escapes: an unanticipated panic is downgraded to a trigger_error
// audit record so one alarm can never take down the dispatcher.
func (e *Engine) fire(rec *ScheduledAlarm, late bool) {
	id := rec.AlarmId
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("alarm %s: panic during firing: %v\n%s", id, r, debug.Stack())
			e.mu.Lock()
			e.triggerErrors++
			e.mu.Unlock()
			e.audit.Record(newAuditEvent("trigger_error", id, e.now(), map[string]any{
				"panic": fmt.Sprint(r),
			}))
		}
	}()

	// An alarm is never armed while firing: clear the index entry and
	// the persisted record before any delivery work, so a concurrent
	// re-arm cannot produce a duplicate fire.
	e.mu.Lock()
	epoch := e.epoch[id]
	delete(e.armed, id)
	e.triggeredTotal++
	e.mu.Unlock()
	if err := e.store.DeleteScheduled(id); err != nil {
		e.noteStoreFailure("clear fired record", err)
	}

	if !e.perms.Granted() && !e.perms.Request() {
		e.log.Warning("alarm %s: notification permission denied, delivering best-effort", id)
	}

	firedAt := e.now()
	if err := e.notifier.Notify(buildNotification(rec, late)); err != nil {
		e.log.Error("alarm %s: notification emit failed: %v", id, err)
	}

	outcome := e.reachClient(rec, firedAt, late)

	e.audit.Record(newAuditEvent("triggered", id, firedAt, map[string]any{
		"late":      late,
		"outcome":   string(outcome),
		"scheduled": rec.NextTrigger,
	}))
	e.bcast.Publish(EventAlarmTriggered, &TriggeredAlarm{
		Alarm:   rec.Alarm,
		FiredAt: firedAt,
		Late:    late,
	})

	if rec.Alarm != nil && rec.Alarm.Recurring() {
		// Debounced so the next-occurrence computation cannot race the
		// firing that just completed.
		alarm := rec.Alarm
		time.AfterFunc(rearmDebounce, func() {
			e.rearmRecurrence(alarm, epoch)
		})
		return
	}

	if err := e.store.SetAppState(StateLastTriggeredAlarm, map[string]any{
		"alarm_id": id,
		"fired_at": firedAt,
		"late":     late,
	}); err != nil {
		e.noteStoreFailure("record last triggered alarm", err)
	}
}

// rearmRecurrence re-arms a recurring alarm after its firing. It
// re-reads the latest definition and refuses to resurrect an alarm
// that was cancelled or replaced while the firing was mid-flight.
func (e *Engine) rearmRecurrence(alarm *Alarm, epoch uint64) {
	id := alarm.Id
	e.mu.Lock()
	if !e.running || e.epoch[id] != epoch {
		e.mu.Unlock()
		return
	}
	if _, rearmed := e.armed[id]; rearmed {
		// An update already armed a fresh occurrence.
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	latest := alarm
	if rec, err := e.store.GetScheduled(id); err == nil && rec != nil && rec.Alarm != nil {
		latest = rec.Alarm
	}
	if _, err := e.Schedule(latest); err != nil {
		e.log.Error("alarm %s: re-arming recurrence: %v", id, err)
	}
}

// reachClient targets exactly one UI surface per firing: the first
// already-open client that accepts the event wins and is focused; when
// none are reachable a new client is opened at the alarm. Connected
// tabs are never spammed collectively.
func (e *Engine) reachClient(rec *ScheduledAlarm, firedAt time.Time, late bool) DeliveryOutcome {
	if e.clients == nil {
		return NoClientDirectory
	}
	payload := &TriggeredAlarm{Alarm: rec.Alarm, FiredAt: firedAt, Late: late}
	for _, c := range e.clients.Clients() {
		if err := c.Deliver(EventAlarmTriggered, payload); err != nil {
			e.log.Warning("alarm %s: client %s unreachable: %v", rec.AlarmId, c.Id(), err)
			continue
		}
		if err := c.Focus(); err != nil {
			e.log.Warning("alarm %s: focusing client %s: %v", rec.AlarmId, c.Id(), err)
		}
		return DeliveredToClient
	}
	if err := e.clients.Open(rec.AlarmId); err != nil {
		e.log.Error("alarm %s: opening client: %v", rec.AlarmId, err)
		return DeliveryFailed
	}
	return OpenedClient
}

func buildNotification(rec *ScheduledAlarm, late bool) *Notification {
	a := rec.Alarm
	if a == nil {
		a = &Alarm{Id: rec.AlarmId}
	}
	title := a.Label
	if title == "" {
		title = "Alarm"
	}
	body := fmt.Sprintf("It's %s", a.Time)
	if late {
		body = fmt.Sprintf("Missed at %s, delivered late", a.Time)
	}
	return &Notification{
		AlarmId: a.Id,
		Title:   title,
		Body:    body,
		Sound:   a.Sound,
		Actions: []string{"dismiss", "snooze"},
		Late:    late,
	}
}
