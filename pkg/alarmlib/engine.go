package alarmlib

import (
	"runtime"
	"sync"
	"time"

	"github.com/wakesync/wakesync/pkg/logger"
)

// Scheduling constants. The grace windows and throttle intervals are
// deliberate product values, not tunables; see package doc.
const (
	// maxSleepCap bounds a single scheduler sleep. Delays beyond the
	// cap are covered by waking early and re-evaluating, which also
	// catches NTP steps, system sleep, and lost timers within one cap
	// period.
	maxSleepCap = 60 * time.Second

	// healthCheckInterval is the periodic health-check cadence.
	healthCheckInterval = 60 * time.Second

	// reconcileInterval throttles the expensive store reconciliation
	// pass inside the periodic health check.
	reconcileInterval = 5 * time.Minute

	// recoveryGraceWindow is how far past due a record may be and still
	// be replayed (marked late) instead of silently skipped.
	recoveryGraceWindow = 5 * time.Minute

	// fireGraceWindow is the overdue margin after which the health
	// check force-fires an armed entry whose timer silently failed.
	fireGraceWindow = 30 * time.Second

	// snoozeDuration is how far a snoozed alarm is pushed out.
	snoozeDuration = 5 * time.Minute

	// rearmDebounce delays a recurring alarm's re-arm after firing so
	// the next-occurrence computation cannot race the completed firing.
	rearmDebounce = 2 * time.Second
)

// AlarmSummary is the client-facing view of one armed alarm.
type AlarmSummary struct {
	Id          string    `json:"id"`
	Alarm       *Alarm    `json:"alarm"`
	NextTrigger time.Time `json:"next_trigger"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Stats aggregates engine counters for the stats command.
type Stats struct {
	Armed          int       `json:"armed"`
	ScheduledTotal uint64    `json:"scheduled_total"`
	CancelledTotal uint64    `json:"cancelled_total"`
	TriggeredTotal uint64    `json:"triggered_total"`
	RecoveredTotal uint64    `json:"recovered_total"`
	TriggerErrors  uint64    `json:"trigger_errors"`
	MissedRecords  int       `json:"missed_records"`
	StoreDegraded  bool      `json:"store_degraded"`
	StartedAt      time.Time `json:"started_at"`
	LastRecovery   time.Time `json:"last_recovery"`
}

// Health is the health-check report.
type Health struct {
	Healthy       bool      `json:"healthy"`
	Armed         int       `json:"armed"`
	StoreDegraded bool      `json:"store_degraded"`
	LastReconcile time.Time `json:"last_reconcile"`
}

// EngineOpts carries optional collaborators for NewEngine. Nil fields
// get safe defaults.
type EngineOpts struct {
	Notifier    Notifier
	Permissions PermissionProvider
	Clients     ClientDirectory
	Audit       AuditSink
	Gate        FeatureGate
	Broadcaster Broadcaster

	// Clock overrides the time source, for tests.
	Clock func() time.Time
}

// Engine owns the mapping from alarm definitions to armed timers: the
// in-memory armed index, the scheduler goroutine, the recovery loop,
// and all writes to the durable schedule store. Construct one per
// daemon lifetime and drive it through Initialize/Shutdown.
type Engine struct {
	log   logger.Logger
	store Store

	notifier Notifier
	perms    PermissionProvider
	clients  ClientDirectory
	audit    AuditSink
	gate     FeatureGate
	bcast    Broadcaster
	now      func() time.Time

	mu    sync.Mutex
	armed map[string]*armedEntry
	h     armedHeap
	// epoch guards mid-flight cancellation: Cancel bumps an alarm's
	// epoch, and a firing sequence refuses to re-arm a recurrence if
	// the epoch moved since the fire began.
	epoch    map[string]uint64
	seq      uint64
	degraded bool
	running  bool

	scheduledTotal uint64
	cancelledTotal uint64
	triggeredTotal uint64
	recoveredTotal uint64
	triggerErrors  uint64

	startedAt     time.Time
	lastRecovery  time.Time
	lastReconcile time.Time

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewEngine creates an Engine over the given store. The engine does
// not own the store's lifetime; the caller closes it after Shutdown.
func NewEngine(l logger.Logger, store Store, opts *EngineOpts) *Engine {
	if opts == nil {
		opts = &EngineOpts{}
	}
	e := &Engine{
		log:      l,
		store:    store,
		notifier: opts.Notifier,
		perms:    opts.Permissions,
		clients:  opts.Clients,
		audit:    opts.Audit,
		gate:     opts.Gate,
		bcast:    opts.Broadcaster,
		now:      opts.Clock,
		armed:    make(map[string]*armedEntry),
		epoch:    make(map[string]uint64),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if e.notifier == nil {
		e.notifier = &logNotifier{log: l}
	}
	if e.perms == nil {
		e.perms = grantedPermissions{}
	}
	if e.audit == nil {
		e.audit = &logAuditSink{log: l}
	}
	if e.gate == nil {
		e.gate = allowAllGate{}
	}
	if e.bcast == nil {
		e.bcast = nopBroadcaster{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// SetBroadcaster installs the broadcast fan-out. Must be called before
// Initialize; the wire layer is constructed after the engine.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	if b != nil {
		e.bcast = b
	}
}

// SetClients installs the connected-client directory. Must be called
// before Initialize.
func (e *Engine) SetClients(c ClientDirectory) {
	e.clients = c
}

// Initialize starts the scheduler and health-check goroutines and runs
// startup recovery against the durable store. Recovery failures are
// logged, never fatal: the next periodic cycle retries.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.startedAt = e.now()
	e.mu.Unlock()

	if err := e.RecoverAll(); err != nil {
		e.log.Error("startup recovery failed, retrying on next cycle: %v", err)
	}

	e.wg.Add(2)
	go e.runLoop()
	go e.healthLoop()
	return nil
}

// Shutdown stops the engine's goroutines. Armed state stays in the
// durable store; a later Initialize on a fresh engine recovers it.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()
	close(e.done)
	e.wg.Wait()
}

// Schedule arms the alarm: computes its next occurrence, persists the
// schedule record, then arms the in-process timer. Disabled or
// id-less definitions are skipped with a (nil, nil) return, not an
// error. A definition with no computable occurrence removes any
// stale persisted record and is likewise not armed.
func (e *Engine) Schedule(a *Alarm) (*ScheduledAlarm, error) {
	if a == nil || a.Id == "" || !a.Enabled {
		return nil, nil
	}
	a = e.applyFeatureGate(a)

	now := e.now()
	next, ok := NextOccurrence(a, now)
	if !ok {
		// No further occurrence: drop any stale record.
		if err := e.store.DeleteScheduled(a.Id); err != nil {
			e.noteStoreFailure("delete stale record", err)
		}
		e.disarm(a.Id)
		return nil, nil
	}

	rec := &ScheduledAlarm{
		AlarmId:     a.Id,
		Alarm:       a.Clone(),
		NextTrigger: next,
		ScheduledAt: now,
		Enabled:     a.Enabled,
	}

	// Clock-skew edge: an occurrence that is already due fires now
	// instead of arming a zero-delay timer.
	if !next.After(e.now()) {
		e.disarm(a.Id)
		e.fire(rec, false)
		return rec, nil
	}

	// Durability precedes in-memory state: a crash between the write
	// and the arm leaves the store as correct recovery ground truth.
	if err := e.store.PutScheduled(rec); err != nil {
		e.noteStoreFailure("persist schedule", err)
	} else {
		e.noteStoreHealthy()
	}

	e.arm(rec)
	e.bcast.Publish(EventAlarmScheduled, summaryOf(rec))
	return rec, nil
}

// Cancel disarms and deletes the alarm. Idempotent: canceling an
// unknown id is a no-op. Safe to call while the alarm's firing
// sequence is mid-flight; the sequence will not resurrect it.
func (e *Engine) Cancel(alarmId string) {
	if alarmId == "" {
		return
	}
	e.mu.Lock()
	e.epoch[alarmId]++
	_, wasArmed := e.armed[alarmId]
	delete(e.armed, alarmId)
	e.cancelledTotal++
	e.mu.Unlock()

	if err := e.store.DeleteScheduled(alarmId); err != nil {
		e.noteStoreFailure("delete schedule", err)
	}
	if err := e.notifier.Clear(alarmId); err != nil {
		e.log.Warning("alarm %s: clearing pending alert: %v", alarmId, err)
	}
	if wasArmed {
		e.kick()
	}
	e.bcast.Publish(EventAlarmCancelled, map[string]any{"alarm_id": alarmId})
}

// BulkReplace swaps the whole armed set for the given definitions:
// every current timer is cancelled and its persisted record deleted,
// then each enabled definition is armed in order with a cooperative
// yield between arms. The full set is snapshotted to app state
// afterwards. Returns the armed count.
func (e *Engine) BulkReplace(defs []*Alarm) int {
	keep := make(map[string]struct{}, len(defs))
	for _, a := range defs {
		if a != nil && a.Id != "" {
			keep[a.Id] = struct{}{}
		}
	}

	stale := make(map[string]struct{})
	e.mu.Lock()
	for id := range e.armed {
		e.epoch[id]++
		delete(e.armed, id)
		if _, ok := keep[id]; !ok {
			stale[id] = struct{}{}
		}
	}
	e.h = e.h[:0]
	e.mu.Unlock()
	e.kick()

	// The store is recovery ground truth: records absent from the new
	// set must go too, including ones no longer in the armed index.
	if recs, err := e.store.ActiveScheduled(); err == nil {
		for _, rec := range recs {
			if _, ok := keep[rec.AlarmId]; !ok {
				stale[rec.AlarmId] = struct{}{}
			}
		}
	}
	for id := range stale {
		if err := e.store.DeleteScheduled(id); err != nil {
			e.noteStoreFailure("delete schedule", err)
		}
		if err := e.notifier.Clear(id); err != nil {
			e.log.Warning("alarm %s: clearing pending alert: %v", id, err)
		}
	}

	armed := 0
	for _, a := range defs {
		rec, err := e.Schedule(a)
		if err == nil && rec != nil {
			armed++
		}
		runtime.Gosched()
	}

	if err := e.store.SetAppState(StateAlarmSetSnapshot, defs); err != nil {
		e.noteStoreFailure("snapshot alarm set", err)
	}
	e.broadcastStateSync()
	return armed
}

// Snooze derives a one-time alarm five minutes out from the parent's
// snapshot and schedules it through the normal path.
func (e *Engine) Snooze(alarmId string) (*ScheduledAlarm, error) {
	parent := e.latestDefinition(alarmId)
	if parent == nil {
		parent = &Alarm{Id: alarmId, Enabled: true}
	}
	now := e.now()
	rec, err := e.Schedule(SnoozeAlarm(parent, now, snoozeDuration))
	if rec != nil {
		e.audit.Record(newAuditEvent("snoozed", alarmId, now, map[string]any{
			"snooze_id": rec.AlarmId,
			"until":     rec.NextTrigger,
		}))
		e.bcast.Publish(EventAlarmSnoozed, summaryOf(rec))
	}
	return rec, err
}

// Dismiss acknowledges a fired alarm: clears its alert, records the
// dismissal, and notifies clients.
func (e *Engine) Dismiss(alarmId string) {
	if err := e.notifier.Clear(alarmId); err != nil {
		e.log.Warning("alarm %s: clearing alert on dismiss: %v", alarmId, err)
	}
	e.audit.Record(newAuditEvent("dismissed", alarmId, e.now(), nil))
	e.bcast.Publish(EventAlarmDismissed, map[string]any{"alarm_id": alarmId})
}

// Scheduled returns summaries of every armed alarm, soonest first.
func (e *Engine) Scheduled() []AlarmSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summariesLocked()
}

// Stats returns engine counters plus the missed-record count.
func (e *Engine) Stats() Stats {
	missed, err := e.store.MissedAlarms()
	if err != nil {
		e.log.Warning("stats: reading missed alarms: %v", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Armed:          len(e.armed),
		ScheduledTotal: e.scheduledTotal,
		CancelledTotal: e.cancelledTotal,
		TriggeredTotal: e.triggeredTotal,
		RecoveredTotal: e.recoveredTotal,
		TriggerErrors:  e.triggerErrors,
		MissedRecords:  len(missed),
		StoreDegraded:  e.degraded,
		StartedAt:      e.startedAt,
		LastRecovery:   e.lastRecovery,
	}
}

// Missed returns the persisted missed-alarm records.
func (e *Engine) Missed() ([]*MissedAlarm, error) {
	return e.store.MissedAlarms()
}

// ClearMissed bulk-clears the missed-alarm records.
func (e *Engine) ClearMissed() (int, error) {
	return e.store.ClearMissed()
}

// StateSync broadcasts the full armed-alarm view for clients that
// missed individual deltas.
func (e *Engine) StateSync() []AlarmSummary {
	e.mu.Lock()
	summaries := e.summariesLocked()
	e.mu.Unlock()
	e.bcast.Publish(EventAlarmStateSync, summaries)
	return summaries
}

// arm installs the record into the armed index and heap, replacing any
// prior arming for the same id.
func (e *Engine) arm(rec *ScheduledAlarm) {
	e.mu.Lock()
	e.seq++
	entry := &armedEntry{
		alarmId:     rec.AlarmId,
		seq:         e.seq,
		at:          rec.NextTrigger,
		scheduledAt: rec.ScheduledAt,
		alarm:       rec.Alarm,
	}
	e.armed[rec.AlarmId] = entry
	heapPush(&e.h, entry)
	e.scheduledTotal++
	e.mu.Unlock()
	e.kick()
}

// disarm removes any in-memory timer for the id without touching the
// store.
func (e *Engine) disarm(alarmId string) {
	e.mu.Lock()
	if _, ok := e.armed[alarmId]; ok {
		delete(e.armed, alarmId)
		e.mu.Unlock()
		e.kick()
		return
	}
	e.mu.Unlock()
}

// kick wakes the scheduler loop to recompute its sleep deadline.
func (e *Engine) kick() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// runLoop is the scheduler goroutine: sleep until the earliest armed
// entry (capped), then fire everything due. Stale heap entries left
// behind by cancels and re-arms are dropped at pop time by sequence
// comparison.
func (e *Engine) runLoop() {
	defer e.wg.Done()
	timer := time.NewTimer(maxSleepCap)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.nextWake())

		select {
		case <-e.done:
			return
		case <-e.wake:
		case <-timer.C:
		}
		e.fireDue()
	}
}

// nextWake returns how long the loop may sleep: until the earliest
// live entry, bounded by maxSleepCap.
func (e *Engine) nextWake() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Drop dead entries off the top so the deadline reflects a live one.
	for {
		top := heapPeek(&e.h)
		if top == nil {
			return maxSleepCap
		}
		cur, ok := e.armed[top.alarmId]
		if !ok || cur.seq != top.seq {
			heapPop(&e.h)
			continue
		}
		d := top.at.Sub(e.now())
		if d < 0 {
			return 0
		}
		if d > maxSleepCap {
			return maxSleepCap
		}
		return d
	}
}

// fireDue pops and fires every live entry whose time has arrived.
func (e *Engine) fireDue() {
	for {
		e.mu.Lock()
		top := heapPeek(&e.h)
		if top == nil || top.at.After(e.now()) {
			e.mu.Unlock()
			return
		}
		heapPop(&e.h)
		cur, ok := e.armed[top.alarmId]
		if !ok || cur.seq != top.seq {
			e.mu.Unlock()
			continue
		}
		rec := &ScheduledAlarm{
			AlarmId:     top.alarmId,
			Alarm:       top.alarm,
			NextTrigger: top.at,
			ScheduledAt: top.scheduledAt,
			Enabled:     true,
		}
		e.mu.Unlock()
		e.fire(rec, false)
	}
}

// summariesLocked builds client-facing summaries. Caller holds e.mu.
func (e *Engine) summariesLocked() []AlarmSummary {
	summaries := make([]AlarmSummary, 0, len(e.armed))
	for _, entry := range e.armed {
		summaries = append(summaries, AlarmSummary{
			Id:          entry.alarmId,
			Alarm:       entry.alarm,
			NextTrigger: entry.at,
			ScheduledAt: entry.scheduledAt,
		})
	}
	sortSummaries(summaries)
	return summaries
}

func sortSummaries(s []AlarmSummary) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].NextTrigger.Before(s[j-1].NextTrigger); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// latestDefinition resolves the freshest known definition for an id:
// the armed snapshot if present, else the persisted record's.
func (e *Engine) latestDefinition(alarmId string) *Alarm {
	e.mu.Lock()
	if entry, ok := e.armed[alarmId]; ok {
		e.mu.Unlock()
		return entry.alarm
	}
	e.mu.Unlock()
	if rec, err := e.store.GetScheduled(alarmId); err == nil && rec != nil {
		return rec.Alarm
	}
	return nil
}

// applyFeatureGate strips premium display fields the user may not use.
func (e *Engine) applyFeatureGate(a *Alarm) *Alarm {
	if a.VoiceMood == "" || e.gate.MayUseFeature(a.UserId, "voice_mood:"+a.VoiceMood) {
		return a
	}
	e.log.Info("alarm %s: voice mood %q not available for user, using default", a.Id, a.VoiceMood)
	cp := a.Clone()
	cp.VoiceMood = ""
	return cp
}

// noteStoreFailure logs a persistence failure and flips the engine to
// degraded (memory-only) mode. The transition is broadcast so clients
// can surface the offline state.
func (e *Engine) noteStoreFailure(op string, err error) {
	e.log.Error("schedule store %s: %v, continuing in memory-only mode", op, err)
	e.mu.Lock()
	was := e.degraded
	e.degraded = true
	e.mu.Unlock()
	if !was {
		e.bcast.Publish(EventNetworkStatus, map[string]any{"store_degraded": true})
	}
}

// noteStoreHealthy clears degraded mode after a successful write.
func (e *Engine) noteStoreHealthy() {
	e.mu.Lock()
	was := e.degraded
	e.degraded = false
	e.mu.Unlock()
	if was {
		e.bcast.Publish(EventNetworkStatus, map[string]any{"store_degraded": false})
	}
}

func (e *Engine) broadcastStateSync() {
	e.mu.Lock()
	summaries := e.summariesLocked()
	e.mu.Unlock()
	e.bcast.Publish(EventAlarmStateSync, summaries)
}

func summaryOf(rec *ScheduledAlarm) AlarmSummary {
	return AlarmSummary{
		Id:          rec.AlarmId,
		Alarm:       rec.Alarm,
		NextTrigger: rec.NextTrigger,
		ScheduledAt: rec.ScheduledAt,
	}
}
