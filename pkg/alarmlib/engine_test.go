package alarmlib

import (
	"testing"
	"time"

	"github.com/wakesync/wakesync/pkg/logger"
)

func TestSchedulePersistsBeforeArming(t *testing.T) {
	e, store, _, bcast, _, _ := newTestEngine(baseTime)

	rec, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec == nil {
		t.Fatal("expected an armed record")
	}

	stored, err := store.GetScheduled("wake")
	if err != nil {
		t.Fatalf("GetScheduled: %v", err)
	}
	if stored == nil {
		t.Fatal("schedule record not persisted")
	}
	if !stored.NextTrigger.Equal(rec.NextTrigger) {
		t.Errorf("stored trigger = %v, want %v", stored.NextTrigger, rec.NextTrigger)
	}

	got := e.Scheduled()
	if len(got) != 1 || got[0].Id != "wake" {
		t.Fatalf("Scheduled() = %v, want one entry for wake", got)
	}
	if !bcast.has(EventAlarmScheduled) {
		t.Error("scheduling did not broadcast")
	}
}

func TestScheduleSkipsDisabledAndIdless(t *testing.T) {
	e, store, _, _, _, _ := newTestEngine(baseTime)

	for _, a := range []*Alarm{
		nil,
		{Id: "", Enabled: true, Time: "07:30"},
		{Id: "off", Enabled: false, Time: "07:30"},
	} {
		rec, err := e.Schedule(a)
		if err != nil {
			t.Fatalf("Schedule(%v): %v", a, err)
		}
		if rec != nil {
			t.Errorf("Schedule(%v): expected no-op", a)
		}
	}
	if recs, _ := store.ActiveScheduled(); len(recs) != 0 {
		t.Errorf("store has %d records, want 0", len(recs))
	}
}

func TestScheduleUnparsableTimeDropsStaleRecord(t *testing.T) {
	e, store, _, _, _, _ := newTestEngine(baseTime)

	if _, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	rec, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "garbage"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec != nil {
		t.Fatal("expected no occurrence")
	}
	if stored, _ := store.GetScheduled("wake"); stored != nil {
		t.Error("stale record should have been deleted")
	}
	if len(e.Scheduled()) != 0 {
		t.Error("stale timer should have been disarmed")
	}
}

func TestScheduleIsIdempotentPerId(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(baseTime)

	first, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	second, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "08:45"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	got := e.Scheduled()
	if len(got) != 1 {
		t.Fatalf("armed = %d, want 1", len(got))
	}
	if !got[0].NextTrigger.Equal(second.NextTrigger) {
		t.Errorf("armed trigger = %v, want the replacement %v", got[0].NextTrigger, second.NextTrigger)
	}
	if got[0].NextTrigger.Equal(first.NextTrigger) {
		t.Error("replacement did not supersede the first arming")
	}
}

func TestCancelRemovesTimerAndRecord(t *testing.T) {
	e, store, notifier, bcast, _, _ := newTestEngine(baseTime)

	if _, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	e.Cancel("wake")

	if len(e.Scheduled()) != 0 {
		t.Error("alarm still armed after cancel")
	}
	if stored, _ := store.GetScheduled("wake"); stored != nil {
		t.Error("record still stored after cancel")
	}
	notifier.mu.Lock()
	cleared := len(notifier.cleared)
	notifier.mu.Unlock()
	if cleared != 1 {
		t.Errorf("cleared %d alerts, want 1", cleared)
	}
	if !bcast.has(EventAlarmCancelled) {
		t.Error("cancel did not broadcast")
	}

	// Idempotent: cancelling again, or an unknown id, is a no-op.
	e.Cancel("wake")
	e.Cancel("never-existed")
	e.Cancel("")
}

func TestCancelInvalidatesMidFlightRearm(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(baseTime)
	alarm := &Alarm{Id: "wake", Enabled: true, Time: "07:30", Days: []int{1, 3, 5}}

	if _, err := e.Schedule(alarm); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	e.mu.Lock()
	e.running = true
	epoch := e.epoch["wake"]
	e.mu.Unlock()

	// A cancel lands while the firing sequence holds the old epoch.
	e.Cancel("wake")
	e.rearmRecurrence(alarm, epoch)

	if len(e.Scheduled()) != 0 {
		t.Error("stale firing resurrected a cancelled alarm")
	}
}

func TestRearmRecurrenceUsesLatestEpoch(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(baseTime)
	alarm := &Alarm{Id: "wake", Enabled: true, Time: "07:30", Days: []int{1, 3, 5}}

	e.mu.Lock()
	e.running = true
	epoch := e.epoch["wake"]
	e.mu.Unlock()

	e.rearmRecurrence(alarm, epoch)
	if len(e.Scheduled()) != 1 {
		t.Error("recurrence with current epoch should re-arm")
	}
}

func TestBulkReplaceSwapsWholeSet(t *testing.T) {
	e, store, _, bcast, _, _ := newTestEngine(baseTime)

	for _, id := range []string{"old1", "old2"} {
		if _, err := e.Schedule(&Alarm{Id: id, Enabled: true, Time: "07:30"}); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}

	defs := []*Alarm{
		{Id: "new1", Enabled: true, Time: "08:00"},
		{Id: "new2", Enabled: true, Time: "09:00", Days: []int{1}},
		{Id: "disabled", Enabled: false, Time: "10:00"},
	}
	armed := e.BulkReplace(defs)
	if armed != 2 {
		t.Errorf("armed = %d, want 2", armed)
	}

	got := e.Scheduled()
	ids := map[string]bool{}
	for _, s := range got {
		ids[s.Id] = true
	}
	if len(got) != 2 || !ids["new1"] || !ids["new2"] {
		t.Errorf("armed set = %v, want new1+new2", ids)
	}

	var snapshot []*Alarm
	found, err := store.GetAppState(StateAlarmSetSnapshot, &snapshot)
	if err != nil || !found {
		t.Fatalf("snapshot missing: found=%v err=%v", found, err)
	}
	if len(snapshot) != 3 {
		t.Errorf("snapshot has %d defs, want 3", len(snapshot))
	}
	if !bcast.has(EventAlarmStateSync) {
		t.Error("bulk replace did not broadcast a state sync")
	}
}

func TestBulkReplaceDeletesRemovedRecords(t *testing.T) {
	e, store, _, _, _, _ := newTestEngine(baseTime)

	if _, err := e.Schedule(&Alarm{Id: "old", Enabled: true, Time: "07:30"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	e.BulkReplace([]*Alarm{{Id: "new", Enabled: true, Time: "08:00"}})

	rec, err := store.GetScheduled("old")
	if err != nil {
		t.Fatalf("GetScheduled: %v", err)
	}
	if rec != nil {
		t.Fatalf("removed alarm still persisted: %+v", rec)
	}

	if err := e.RecoverAll(); err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}
	for _, s := range e.Scheduled() {
		if s.Id == "old" {
			t.Error("recovery re-armed an alarm removed by bulk replace")
		}
	}
}

func TestBulkReplaceSweepsUnarmedStoreRecords(t *testing.T) {
	e, store, _, _, _, _ := newTestEngine(baseTime)

	// A persisted record with no armed entry, as left by a crash
	// between the store write and the arm.
	if err := store.PutScheduled(&ScheduledAlarm{
		AlarmId:     "orphan",
		Alarm:       &Alarm{Id: "orphan", Enabled: true, Time: "07:30"},
		NextTrigger: baseTime.Add(90 * time.Minute),
		ScheduledAt: baseTime,
		Enabled:     true,
	}); err != nil {
		t.Fatalf("PutScheduled: %v", err)
	}

	e.BulkReplace([]*Alarm{{Id: "new", Enabled: true, Time: "08:00"}})

	if rec, _ := store.GetScheduled("orphan"); rec != nil {
		t.Fatalf("orphaned record survived bulk replace: %+v", rec)
	}
	if rec, _ := store.GetScheduled("new"); rec == nil {
		t.Error("replacement alarm not persisted")
	}
}

func TestBulkReplaceEmptyClearsEverything(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(baseTime)
	if _, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if armed := e.BulkReplace(nil); armed != 0 {
		t.Errorf("armed = %d, want 0", armed)
	}
	if len(e.Scheduled()) != 0 {
		t.Error("armed set should be empty")
	}
}

func TestSnoozeDerivesOneTimeAlarm(t *testing.T) {
	e, _, _, bcast, audit, _ := newTestEngine(baseTime)

	if _, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30", Label: "Wake"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	rec, err := e.Snooze("wake")
	if err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a snooze record")
	}
	if rec.Alarm.Recurring() {
		t.Error("snooze must be one-time")
	}
	if rec.Alarm.Label != "Wake" {
		t.Error("snooze lost the parent's display fields")
	}
	if len(audit.typed("snoozed")) != 1 {
		t.Error("snooze not audited")
	}
	if !bcast.has(EventAlarmSnoozed) {
		t.Error("snooze did not broadcast")
	}
}

func TestSnoozeUnknownAlarmStillWorks(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(baseTime)
	rec, err := e.Snooze("ghost")
	if err != nil {
		t.Fatalf("Snooze: %v", err)
	}
	if rec == nil {
		t.Fatal("snoozing an unknown id should still arm a synthetic alarm")
	}
}

func TestDismissClearsAndBroadcasts(t *testing.T) {
	e, _, notifier, bcast, audit, _ := newTestEngine(baseTime)
	e.Dismiss("wake")

	notifier.mu.Lock()
	cleared := len(notifier.cleared)
	notifier.mu.Unlock()
	if cleared != 1 {
		t.Error("dismiss did not clear the alert")
	}
	if len(audit.typed("dismissed")) != 1 {
		t.Error("dismiss not audited")
	}
	if !bcast.has(EventAlarmDismissed) {
		t.Error("dismiss did not broadcast")
	}
}

func TestStoreFailureEntersDegradedMode(t *testing.T) {
	e, store, _, bcast, _, _ := newTestEngine(baseTime)

	store.FailNext = ErrStoreClosed
	rec, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec == nil {
		t.Fatal("a store failure must not prevent arming")
	}
	if len(e.Scheduled()) != 1 {
		t.Error("alarm should be armed in memory despite the store failure")
	}
	if !e.Stats().StoreDegraded {
		t.Error("engine should report a degraded store")
	}
	if !bcast.has(EventNetworkStatus) {
		t.Error("degraded transition did not broadcast")
	}

	// A successful write transitions back to healthy.
	if _, err := e.Schedule(&Alarm{Id: "other", Enabled: true, Time: "09:00"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if e.Stats().StoreDegraded {
		t.Error("engine should have recovered from degraded mode")
	}
}

func TestScheduledSortsSoonestFirst(t *testing.T) {
	e, _, _, _, _, _ := newTestEngine(baseTime)
	for _, tt := range []struct{ id, at string }{
		{"late", "11:00"},
		{"early", "07:00"},
		{"mid", "09:00"},
	} {
		if _, err := e.Schedule(&Alarm{Id: tt.id, Enabled: true, Time: tt.at}); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}
	got := e.Scheduled()
	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if got[i].Id != id {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestStatsCountersTrackOperations(t *testing.T) {
	e, _, _, _, _, clock := newTestEngine(baseTime)

	if _, err := e.Schedule(&Alarm{Id: "a", Enabled: true, Time: "07:30"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if _, err := e.Schedule(&Alarm{Id: "b", Enabled: true, Time: "07:45"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	e.Cancel("a")

	clock.Advance(2 * time.Hour)
	e.fireDue()

	s := e.Stats()
	if s.ScheduledTotal != 2 {
		t.Errorf("ScheduledTotal = %d, want 2", s.ScheduledTotal)
	}
	if s.CancelledTotal != 1 {
		t.Errorf("CancelledTotal = %d, want 1", s.CancelledTotal)
	}
	if s.TriggeredTotal != 1 {
		t.Errorf("TriggeredTotal = %d, want 1", s.TriggeredTotal)
	}
	if s.Armed != 0 {
		t.Errorf("Armed = %d, want 0", s.Armed)
	}
}

func TestRunLoopFiresArmedAlarm(t *testing.T) {
	// Full-loop test on the real clock: arm an entry a few
	// milliseconds out and wait for the scheduler to fire it.
	store := NewMemStore()
	notifier := &recNotifier{}
	e := NewEngine(logger.NewMockLogger(), store, &EngineOpts{Notifier: notifier})
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Shutdown()

	now := time.Now()
	rec := &ScheduledAlarm{
		AlarmId:     "soon",
		Alarm:       &Alarm{Id: "soon", Enabled: true, Time: "07:30"},
		NextTrigger: now.Add(30 * time.Millisecond),
		ScheduledAt: now,
		Enabled:     true,
	}
	if err := store.PutScheduled(rec); err != nil {
		t.Fatalf("PutScheduled: %v", err)
	}
	e.arm(rec)

	deadline := time.After(3 * time.Second)
	for notifier.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("alarm never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if stored, _ := store.GetScheduled("soon"); stored != nil {
		t.Error("fired record should be cleared from the store")
	}
}

func TestShutdownStopsLoops(t *testing.T) {
	e := NewEngine(logger.NewMockLogger(), NewMemStore(), nil)
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	e.Shutdown()
	// Second shutdown is a no-op, not a panic.
	e.Shutdown()
}

func TestVoiceMoodStrippedWhenGateDenies(t *testing.T) {
	store := NewMemStore()
	e := NewEngine(logger.NewMockLogger(), store, &EngineOpts{
		Gate:  denyMoods{},
		Clock: newFakeClock(baseTime).Now,
	})
	rec, err := e.Schedule(&Alarm{Id: "wake", Enabled: true, Time: "07:30", UserId: "u1", VoiceMood: "drill-sergeant"})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if rec.Alarm.VoiceMood != "" {
		t.Error("gated voice mood should be stripped, not rejected")
	}
}

type denyMoods struct{}

func (denyMoods) MayUseFeature(userId, featureId string) bool { return false }
