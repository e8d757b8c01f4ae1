package alarmlib

import (
	"testing"
	"time"
)

func dueRecord(id string, at time.Time, days []int) *ScheduledAlarm {
	return &ScheduledAlarm{
		AlarmId:     id,
		Alarm:       &Alarm{Id: id, Enabled: true, Time: "07:30", Days: days, Label: "Wake"},
		NextTrigger: at,
		ScheduledAt: at.Add(-time.Hour),
		Enabled:     true,
	}
}

func TestFireOneTimeAlarm(t *testing.T) {
	e, store, notifier, bcast, audit, _ := newTestEngine(baseTime)

	rec := dueRecord("wake", baseTime, nil)
	if err := store.PutScheduled(rec); err != nil {
		t.Fatalf("PutScheduled: %v", err)
	}
	e.fire(rec, false)

	if notifier.count() != 1 {
		t.Fatalf("notifications = %d, want 1", notifier.count())
	}
	n := notifier.last()
	if n.Title != "Wake" || n.Late {
		t.Errorf("notification = %+v, want title Wake, not late", n)
	}
	if len(n.Actions) != 2 {
		t.Errorf("actions = %v, want dismiss+snooze", n.Actions)
	}

	if stored, _ := store.GetScheduled("wake"); stored != nil {
		t.Error("fired record should be deleted before delivery")
	}
	if len(audit.typed("triggered")) != 1 {
		t.Error("firing not audited")
	}
	if !bcast.has(EventAlarmTriggered) {
		t.Error("firing did not broadcast")
	}

	var last map[string]any
	found, err := store.GetAppState(StateLastTriggeredAlarm, &last)
	if err != nil || !found {
		t.Fatalf("last-triggered state missing: found=%v err=%v", found, err)
	}
	if last["alarm_id"] != "wake" {
		t.Errorf("last triggered = %v, want wake", last["alarm_id"])
	}
}

func TestFireLateAlarmMarksNotification(t *testing.T) {
	e, _, notifier, _, _, _ := newTestEngine(baseTime)

	e.fire(dueRecord("wake", baseTime.Add(-2*time.Minute), nil), true)

	n := notifier.last()
	if n == nil {
		t.Fatal("no notification emitted")
	}
	if !n.Late {
		t.Error("late delivery should be marked on the notification")
	}
}

func TestFireReachesFirstLiveClient(t *testing.T) {
	e, _, _, _, audit, _ := newTestEngine(baseTime)
	dead := &fakeClient{id: "dead", deliverOk: false}
	live := &fakeClient{id: "live", deliverOk: true}
	spare := &fakeClient{id: "spare", deliverOk: true}
	dir := &fakeDirectory{clients: []ClientHandle{dead, live, spare}}
	e.SetClients(dir)

	e.fire(dueRecord("wake", baseTime, nil), false)

	if len(live.delivered) != 1 || live.focused != 1 {
		t.Errorf("live client: delivered=%d focused=%d, want 1/1", len(live.delivered), live.focused)
	}
	if len(spare.delivered) != 0 {
		t.Error("only the first live client should receive the event")
	}
	if len(dir.opened) != 0 {
		t.Error("no new client should be opened when one was reached")
	}
	evs := audit.typed("triggered")
	if len(evs) != 1 || evs[0].Details["outcome"] != string(DeliveredToClient) {
		t.Errorf("audit outcome = %v, want %s", evs, DeliveredToClient)
	}
}

func TestFireOpensClientWhenNoneReachable(t *testing.T) {
	e, _, _, _, audit, _ := newTestEngine(baseTime)
	dir := &fakeDirectory{clients: []ClientHandle{
		&fakeClient{id: "dead", deliverOk: false},
	}}
	e.SetClients(dir)

	e.fire(dueRecord("wake", baseTime, nil), false)

	if len(dir.opened) != 1 || dir.opened[0] != "wake" {
		t.Errorf("opened = %v, want [wake]", dir.opened)
	}
	evs := audit.typed("triggered")
	if len(evs) != 1 || evs[0].Details["outcome"] != string(OpenedClient) {
		t.Errorf("audit outcome = %v, want %s", evs, OpenedClient)
	}
}

func TestFireRecordsDeliveryFailure(t *testing.T) {
	e, _, _, _, audit, _ := newTestEngine(baseTime)
	dir := &fakeDirectory{openErr: errNoLaunch}
	e.SetClients(dir)

	e.fire(dueRecord("wake", baseTime, nil), false)

	evs := audit.typed("triggered")
	if len(evs) != 1 || evs[0].Details["outcome"] != string(DeliveryFailed) {
		t.Errorf("audit outcome = %v, want %s", evs, DeliveryFailed)
	}
}

func TestFireWithoutClientDirectory(t *testing.T) {
	e, _, notifier, _, audit, _ := newTestEngine(baseTime)
	e.SetClients(nil)

	e.fire(dueRecord("wake", baseTime, nil), false)

	if notifier.count() != 1 {
		t.Error("notification should still be emitted headless")
	}
	evs := audit.typed("triggered")
	if len(evs) != 1 || evs[0].Details["outcome"] != string(NoClientDirectory) {
		t.Errorf("audit outcome = %v, want %s", evs, NoClientDirectory)
	}
}

func TestFirePanicIsContained(t *testing.T) {
	e, _, notifier, _, audit, _ := newTestEngine(baseTime)
	notifier.panics = true

	e.fire(dueRecord("wake", baseTime, nil), false)

	if len(audit.typed("trigger_error")) != 1 {
		t.Error("panic should produce a trigger_error audit record")
	}
	if e.Stats().TriggerErrors != 1 {
		t.Error("panic should increment the trigger-error counter")
	}
}

func TestFireRecurringDoesNotCompleteAlarm(t *testing.T) {
	e, store, _, _, _, _ := newTestEngine(baseTime)

	e.fire(dueRecord("wake", baseTime, []int{1, 3, 5}), false)

	var last map[string]any
	found, _ := store.GetAppState(StateLastTriggeredAlarm, &last)
	if found {
		t.Error("recurring firing must not mark the alarm completed")
	}
}

func TestBuildNotificationDefaults(t *testing.T) {
	n := buildNotification(&ScheduledAlarm{
		AlarmId: "x",
		Alarm:   &Alarm{Id: "x", Time: "07:30"},
	}, false)
	if n.Title != "Alarm" {
		t.Errorf("title = %q, want Alarm", n.Title)
	}

	late := buildNotification(&ScheduledAlarm{AlarmId: "x", Alarm: &Alarm{Id: "x", Time: "07:30"}}, true)
	if !late.Late {
		t.Error("late flag lost")
	}
}
