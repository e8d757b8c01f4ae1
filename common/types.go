package common

import (
	"time"

	"github.com/wakesync/wakesync/pkg/alarmlib"
)

// ScheduleAlarmParams is the payload for schedule_alarm.
type ScheduleAlarmParams struct {
	Alarm *alarmlib.Alarm `json:"alarm"`
}

// ScheduleAlarmResponse reports the arming outcome.
type ScheduleAlarmResponse struct {
	AlarmId     string    `json:"alarm_id"`
	Armed       bool      `json:"armed"`
	NextTrigger time.Time `json:"next_trigger,omitempty"`
}

// CancelAlarmParams is the payload for cancel_alarm, dismiss_alarm and
// snooze_alarm.
type CancelAlarmParams struct {
	AlarmId string `json:"alarm_id"`
}

// UpdateAlarmsParams is the payload for update_alarms (bulk replace).
type UpdateAlarmsParams struct {
	Alarms []*alarmlib.Alarm `json:"alarms"`
}

// UpdateAlarmsResponse reports the bulk-replace outcome.
type UpdateAlarmsResponse struct {
	Armed int `json:"armed"`
}

// ScheduledAlarmsResponse lists the armed alarms.
type ScheduledAlarmsResponse struct {
	Alarms []alarmlib.AlarmSummary `json:"alarms"`
}

// SnoozeResponse reports the synthetic snooze alarm created.
type SnoozeResponse struct {
	SnoozeId    string    `json:"snooze_id"`
	NextTrigger time.Time `json:"next_trigger"`
}

// ClearMissedResponse reports how many missed-alarm records were
// removed.
type ClearMissedResponse struct {
	Cleared int `json:"cleared"`
}

// PermissionResponse reports the notification-permission state.
type PermissionResponse struct {
	Granted bool `json:"granted"`
}

// WorkerStateResponse describes the daemon for get_worker_state.
type WorkerStateResponse struct {
	Version       string    `json:"version"`
	StartedAt     time.Time `json:"started_at"`
	Armed         int       `json:"armed"`
	StoreDegraded bool      `json:"store_degraded"`
	LastRecovery  time.Time `json:"last_recovery"`
}

// AckResponse is the generic acknowledgement payload.
type AckResponse struct {
	Done bool `json:"done"`
}
