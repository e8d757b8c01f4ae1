package common

// UpdateType identifies a request method or a broadcast update on the
// client-daemon wire.
type UpdateType string

// Request methods accepted by the daemon.
const (
	UPDATE_SCHEDULE_ALARM     UpdateType = "schedule_alarm"
	UPDATE_CANCEL_ALARM       UpdateType = "cancel_alarm"
	UPDATE_UPDATE_ALARMS      UpdateType = "update_alarms"
	UPDATE_GET_SCHEDULED      UpdateType = "get_scheduled_alarms"
	UPDATE_FORCE_RECOVERY     UpdateType = "force_alarm_recovery"
	UPDATE_HEALTH_CHECK       UpdateType = "health_check"
	UPDATE_GET_STATS          UpdateType = "get_alarm_stats"
	UPDATE_CLEAR_MISSED       UpdateType = "clear_missed_alarms"
	UPDATE_SYNC_STATE         UpdateType = "sync_alarm_state"
	UPDATE_REQUEST_PERMISSION UpdateType = "request_notification_permission"
	UPDATE_GET_WORKER_STATE   UpdateType = "get_worker_state"
	UPDATE_DISMISS_ALARM      UpdateType = "dismiss_alarm"
	UPDATE_SNOOZE_ALARM       UpdateType = "snooze_alarm"
	UPDATE_SUBSCRIBE          UpdateType = "subscribe"
)

// Broadcast update types pushed by the daemon to every connected client.
const (
	EVENT_ALARM_SCHEDULED  UpdateType = "alarm_scheduled"
	EVENT_ALARM_CANCELLED  UpdateType = "alarm_cancelled"
	EVENT_ALARM_TRIGGERED  UpdateType = "alarm_triggered"
	EVENT_ALARM_DISMISSED  UpdateType = "alarm_dismissed"
	EVENT_ALARM_SNOOZED    UpdateType = "alarm_snoozed"
	EVENT_ALARM_STATE_SYNC UpdateType = "alarm_state_sync"
	EVENT_NETWORK_STATUS   UpdateType = "network_status"
	EVENT_FOCUS_CLIENT     UpdateType = "focus_client"
)

// MaxMessageSize is the maximum framed payload accepted on the socket.
const MaxMessageSize = 4 << 20

// TCP fallback defaults used when the Unix socket is unavailable.
const (
	DefaultTCPPort = 6230
	TCPHost        = "localhost"
)
