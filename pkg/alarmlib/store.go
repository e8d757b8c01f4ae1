package alarmlib

import "time"

// ScheduledAlarm is the persisted record for an armed alarm. It is the
// daemon's source of truth for recovery: a write must fully replace any
// prior record for the same alarm id.
type ScheduledAlarm struct {
	AlarmId string `json:"alarm_id"`
	// Alarm is the definition snapshot taken at scheduling time. It may
	// go stale relative to live UI edits until the next explicit update.
	Alarm       *Alarm    `json:"alarm"`
	NextTrigger time.Time `json:"next_trigger"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Enabled     bool      `json:"enabled"`
}

// MissedAlarm records an alarm the recovery engine found past due.
// Records are append-only; only ClearMissed removes them.
type MissedAlarm struct {
	Id            string    `json:"id"`
	AlarmId       string    `json:"alarm_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	MissedTime    time.Time `json:"missed_time"`
	Alarm         *Alarm    `json:"alarm"`
	// Recovered marks a firing replayed inside the grace window.
	// Occurrences past the window are dropped without a record.
	Recovered bool `json:"recovered"`
}

// Well-known app-state keys.
const (
	StateLastTriggeredAlarm = "last_triggered_alarm"
	StateAlarmSetSnapshot   = "alarm_set_snapshot"
)

// Store is the durable schedule store consumed by the engine. All
// operations may fail (storage unavailable, quota); callers treat
// failure as non-fatal and continue in memory-only mode.
type Store interface {
	// PutScheduled upserts a record by alarm id, atomically replacing
	// any prior value for the same key.
	PutScheduled(rec *ScheduledAlarm) error

	// DeleteScheduled removes a record. Deleting an absent id is a no-op.
	DeleteScheduled(alarmId string) error

	// GetScheduled returns the record for the id, or nil if absent.
	GetScheduled(alarmId string) (*ScheduledAlarm, error)

	// ActiveScheduled returns every enabled record, reflecting all
	// writes committed before the call started.
	ActiveScheduled() ([]*ScheduledAlarm, error)

	// PutMissed appends a missed-alarm record.
	PutMissed(rec *MissedAlarm) error

	// MissedAlarms returns all missed-alarm records.
	MissedAlarms() ([]*MissedAlarm, error)

	// ClearMissed removes all missed-alarm records, returning the count.
	ClearMissed() (int, error)

	// SetAppState persists an arbitrary small value under key.
	SetAppState(key string, value any) error

	// GetAppState loads the value under key into dst, reporting whether
	// the key existed.
	GetAppState(key string, dst any) (bool, error)

	Close() error
}
