package wakecli

import (
	"encoding/json"

	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
)

func invoke[T any](c *Client, method string, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// Schedule arms the given alarm definition on the daemon.
func (c *Client) Schedule(a *alarmlib.Alarm) (*common.ScheduleAlarmResponse, error) {
	return invoke[common.ScheduleAlarmResponse](c, string(common.UPDATE_SCHEDULE_ALARM), &common.ScheduleAlarmParams{
		Alarm: a,
	})
}

// Cancel disarms the alarm with the given id.
func (c *Client) Cancel(alarmId string) (bool, error) {
	_, err := c.invoke(string(common.UPDATE_CANCEL_ALARM), &common.CancelAlarmParams{AlarmId: alarmId})
	return err == nil, err
}

// UpdateAlarms replaces the entire alarm set with the given
// definitions.
func (c *Client) UpdateAlarms(alarms []*alarmlib.Alarm) (*common.UpdateAlarmsResponse, error) {
	return invoke[common.UpdateAlarmsResponse](c, string(common.UPDATE_UPDATE_ALARMS), &common.UpdateAlarmsParams{
		Alarms: alarms,
	})
}

// Scheduled lists the armed alarms, soonest first.
func (c *Client) Scheduled() (*common.ScheduledAlarmsResponse, error) {
	return invoke[common.ScheduledAlarmsResponse](c, string(common.UPDATE_GET_SCHEDULED), nil)
}

// ForceRecovery runs a full recovery scan on the daemon.
func (c *Client) ForceRecovery() (bool, error) {
	_, err := c.invoke(string(common.UPDATE_FORCE_RECOVERY), nil)
	return err == nil, err
}

// HealthCheck returns the daemon's health report.
func (c *Client) HealthCheck() (*alarmlib.Health, error) {
	return invoke[alarmlib.Health](c, string(common.UPDATE_HEALTH_CHECK), nil)
}

// Stats returns the daemon's scheduling counters.
func (c *Client) Stats() (*alarmlib.Stats, error) {
	return invoke[alarmlib.Stats](c, string(common.UPDATE_GET_STATS), nil)
}

// ClearMissed removes all missed-alarm records.
func (c *Client) ClearMissed() (*common.ClearMissedResponse, error) {
	return invoke[common.ClearMissedResponse](c, string(common.UPDATE_CLEAR_MISSED), nil)
}

// SyncState asks the daemon to broadcast its full armed-alarm state
// and returns that state.
func (c *Client) SyncState() (*common.ScheduledAlarmsResponse, error) {
	return invoke[common.ScheduledAlarmsResponse](c, string(common.UPDATE_SYNC_STATE), nil)
}

// RequestPermission asks for notification permission.
func (c *Client) RequestPermission() (*common.PermissionResponse, error) {
	return invoke[common.PermissionResponse](c, string(common.UPDATE_REQUEST_PERMISSION), nil)
}

// WorkerState describes the running daemon.
func (c *Client) WorkerState() (*common.WorkerStateResponse, error) {
	return invoke[common.WorkerStateResponse](c, string(common.UPDATE_GET_WORKER_STATE), nil)
}

// Dismiss acknowledges a fired alarm and clears its notification.
func (c *Client) Dismiss(alarmId string) (bool, error) {
	_, err := c.invoke(string(common.UPDATE_DISMISS_ALARM), &common.CancelAlarmParams{AlarmId: alarmId})
	return err == nil, err
}

// Snooze pushes a fired alarm out by the daemon's snooze interval.
func (c *Client) Snooze(alarmId string) (*common.SnoozeResponse, error) {
	return invoke[common.SnoozeResponse](c, string(common.UPDATE_SNOOZE_ALARM), &common.CancelAlarmParams{
		AlarmId: alarmId,
	})
}

// Subscribe registers this connection for broadcast updates. After
// subscribing, run Listen to receive them.
func (c *Client) Subscribe() (string, error) {
	res, err := invoke[map[string]string](c, string(common.UPDATE_SUBSCRIBE), nil)
	if err != nil {
		return "", err
	}
	return (*res)["client_id"], nil
}
