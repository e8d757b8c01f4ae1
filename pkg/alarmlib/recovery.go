package alarmlib

import (
	"fmt"
	"time"
)

// RecoverAll reconciles the durable store against the in-memory armed
// index. It runs at startup and on demand, treating the store as
// ground truth:
//
//   - records still in the future are silently re-armed;
//   - records past due within the grace window are replayed as
//     missed-but-recoverable firings, marked late, with a missed-alarm
//     record written;
//   - records further past are either rolled forward (recurring) or
//     dropped as permanently expired (one-time).
//
// Each record is processed independently: one record's failure is
// logged and never blocks the others.
func (e *Engine) RecoverAll() error {
	now := e.now()
	records, err := e.store.ActiveScheduled()
	if err != nil {
		e.noteStoreFailure("recovery scan", err)
		return fmt.Errorf("recovery scan: %w", err)
	}
	e.noteStoreHealthy()

	for _, rec := range records {
		rec := rec
		safeCall(e.log, "recover alarm "+rec.AlarmId, func() {
			e.recoverRecord(rec, now)
		})
	}

	e.mu.Lock()
	e.lastRecovery = now
	e.mu.Unlock()
	e.broadcastStateSync()
	return nil
}

func (e *Engine) recoverRecord(rec *ScheduledAlarm, now time.Time) {
	id := rec.AlarmId
	overdue := now.Sub(rec.NextTrigger)

	switch {
	case overdue <= 0:
		// Still in the future: restore the in-memory timer as-is,
		// without recomputing the occurrence.
		e.mu.Lock()
		if _, armed := e.armed[id]; armed {
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()
		e.arm(rec)

	case overdue <= recoveryGraceWindow:
		// Missed but recoverable: record it, then deliver late.
		missed := &MissedAlarm{
			Id:            fmt.Sprintf("%s-%d", id, now.UnixMilli()),
			AlarmId:       id,
			ScheduledTime: rec.NextTrigger,
			MissedTime:    now,
			Alarm:         rec.Alarm,
			Recovered:     true,
		}
		if err := e.store.PutMissed(missed); err != nil {
			e.noteStoreFailure("record missed alarm", err)
		}
		e.mu.Lock()
		e.recoveredTotal++
		e.mu.Unlock()
		e.log.Warning("alarm %s: missed by %s, delivering late", id, overdue.Round(time.Second))
		e.fire(rec, true)

	default:
		// Too stale to replay. Recurring alarms roll forward to their
		// next occurrence; one-time alarms are permanently expired.
		if rec.Alarm != nil && rec.Alarm.Recurring() {
			if _, err := e.Schedule(rec.Alarm); err != nil {
				e.log.Error("alarm %s: rolling forward stale recurrence: %v", id, err)
			}
			return
		}
		if err := e.store.DeleteScheduled(id); err != nil {
			e.noteStoreFailure("expire stale record", err)
		}
		e.log.Info("alarm %s: expired (%s past due), dropped", id, overdue.Round(time.Second))
	}
}

// healthLoop runs the periodic health check. Every tick force-fires
// overdue armed entries; the full store reconciliation is throttled by
// the last-run guard. The loop itself can never die: every pass runs
// under safeCall.
func (e *Engine) healthLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			safeCall(e.log, "health check", e.healthCheckPass)
		}
	}
}

func (e *Engine) healthCheckPass() {
	now := e.now()
	e.forceFireOverdue(now)

	e.mu.Lock()
	due := now.Sub(e.lastReconcile) >= reconcileInterval
	if due {
		e.lastReconcile = now
	}
	e.mu.Unlock()
	if due {
		e.reconcile(now)
	}
}

// forceFireOverdue fires any armed entry whose trigger slipped past
// the fire grace window without the scheduler loop acting on it,
// which happens when the timer mechanism silently fails.
func (e *Engine) forceFireOverdue(now time.Time) {
	cutoff := now.Add(-fireGraceWindow)

	var overdue []*ScheduledAlarm
	e.mu.Lock()
	for id, entry := range e.armed {
		if entry.at.After(cutoff) {
			continue
		}
		delete(e.armed, id)
		overdue = append(overdue, &ScheduledAlarm{
			AlarmId:     entry.alarmId,
			Alarm:       entry.alarm,
			NextTrigger: entry.at,
			ScheduledAt: entry.scheduledAt,
			Enabled:     true,
		})
	}
	e.mu.Unlock()

	for _, rec := range overdue {
		e.log.Warning("alarm %s: timer never fired, force-firing", rec.AlarmId)
		e.fire(rec, false)
	}
}

// reconcile heals divergence between store and index in both
// directions: enabled records missing from the index are re-armed
// (worker restart between periodic runs), and armed entries missing
// from the store are re-persisted (consistency repair, not an error).
func (e *Engine) reconcile(now time.Time) {
	records, err := e.store.ActiveScheduled()
	if err != nil {
		e.noteStoreFailure("reconcile scan", err)
		return
	}
	e.noteStoreHealthy()

	persisted := make(map[string]*ScheduledAlarm, len(records))
	for _, rec := range records {
		persisted[rec.AlarmId] = rec
	}

	var toArm []*ScheduledAlarm
	var toPersist []*ScheduledAlarm
	e.mu.Lock()
	for id, rec := range persisted {
		if _, armed := e.armed[id]; !armed {
			toArm = append(toArm, rec)
		}
	}
	for id, entry := range e.armed {
		if _, ok := persisted[id]; !ok {
			toPersist = append(toPersist, &ScheduledAlarm{
				AlarmId:     id,
				Alarm:       entry.alarm,
				NextTrigger: entry.at,
				ScheduledAt: entry.scheduledAt,
				Enabled:     true,
			})
		}
	}
	e.mu.Unlock()

	for _, rec := range toArm {
		rec := rec
		safeCall(e.log, "reconcile re-arm "+rec.AlarmId, func() {
			e.recoverRecord(rec, now)
		})
	}
	for _, rec := range toPersist {
		if err := e.store.PutScheduled(rec); err != nil {
			e.noteStoreFailure("reconcile re-persist", err)
		}
	}
}

// HealthCheck reports current engine health and runs an immediate
// overdue-timer sweep.
func (e *Engine) HealthCheck() Health {
	now := e.now()
	safeCall(e.log, "on-demand health check", func() {
		e.forceFireOverdue(now)
	})
	e.mu.Lock()
	defer e.mu.Unlock()
	return Health{
		Healthy:       e.running,
		Armed:         len(e.armed),
		StoreDegraded: e.degraded,
		LastReconcile: e.lastReconcile,
	}
}
