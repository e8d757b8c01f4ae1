package api

import (
	"encoding/json"
	"errors"

	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/internal/server"
)

var errNoAlarmId = errors.New("alarm_id is required")

func (a *Api) scheduleAlarmHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleAlarmParams
	if err := json.Unmarshal(body, &m); err != nil {
		return "", nil, err
	}
	if m.Alarm == nil || m.Alarm.Id == "" {
		return "", nil, errors.New("alarm with id is required")
	}
	rec, err := a.engine.Schedule(m.Alarm)
	if err != nil {
		return "", nil, err
	}
	resp := &common.ScheduleAlarmResponse{AlarmId: m.Alarm.Id}
	if rec != nil {
		resp.Armed = true
		resp.NextTrigger = rec.NextTrigger
	}
	return common.UPDATE_SCHEDULE_ALARM, resp, nil
}

func (a *Api) cancelAlarmHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CancelAlarmParams
	if err := json.Unmarshal(body, &m); err != nil {
		return "", nil, err
	}
	if m.AlarmId == "" {
		return "", nil, errNoAlarmId
	}
	a.engine.Cancel(m.AlarmId)
	return common.UPDATE_CANCEL_ALARM, &common.AckResponse{Done: true}, nil
}

func (a *Api) updateAlarmsHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.UpdateAlarmsParams
	if err := json.Unmarshal(body, &m); err != nil {
		return "", nil, err
	}
	armed := a.engine.BulkReplace(m.Alarms)
	return common.UPDATE_UPDATE_ALARMS, &common.UpdateAlarmsResponse{Armed: armed}, nil
}

func (a *Api) getScheduledHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_GET_SCHEDULED, &common.ScheduledAlarmsResponse{
		Alarms: a.engine.Scheduled(),
	}, nil
}

func (a *Api) forceRecoveryHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	if err := a.engine.RecoverAll(); err != nil {
		return "", nil, err
	}
	return common.UPDATE_FORCE_RECOVERY, &common.AckResponse{Done: true}, nil
}

func (a *Api) healthCheckHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_HEALTH_CHECK, a.engine.HealthCheck(), nil
}

func (a *Api) getStatsHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_GET_STATS, a.engine.Stats(), nil
}

func (a *Api) clearMissedHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	n, err := a.engine.ClearMissed()
	if err != nil {
		return "", nil, err
	}
	return common.UPDATE_CLEAR_MISSED, &common.ClearMissedResponse{Cleared: n}, nil
}

func (a *Api) syncStateHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	return common.UPDATE_SYNC_STATE, &common.ScheduledAlarmsResponse{
		Alarms: a.engine.StateSync(),
	}, nil
}

func (a *Api) requestPermissionHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	granted := true
	if a.perms != nil {
		granted = a.perms.Granted()
		if !granted {
			granted = a.perms.Request()
		}
	}
	return common.UPDATE_REQUEST_PERMISSION, &common.PermissionResponse{Granted: granted}, nil
}

func (a *Api) getWorkerStateHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	st := a.engine.Stats()
	return common.UPDATE_GET_WORKER_STATE, &common.WorkerStateResponse{
		Version:       a.version,
		StartedAt:     st.StartedAt,
		Armed:         st.Armed,
		StoreDegraded: st.StoreDegraded,
		LastRecovery:  st.LastRecovery,
	}, nil
}

func (a *Api) dismissAlarmHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CancelAlarmParams
	if err := json.Unmarshal(body, &m); err != nil {
		return "", nil, err
	}
	if m.AlarmId == "" {
		return "", nil, errNoAlarmId
	}
	a.engine.Dismiss(m.AlarmId)
	return common.UPDATE_DISMISS_ALARM, &common.AckResponse{Done: true}, nil
}

func (a *Api) snoozeAlarmHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.CancelAlarmParams
	if err := json.Unmarshal(body, &m); err != nil {
		return "", nil, err
	}
	if m.AlarmId == "" {
		return "", nil, errNoAlarmId
	}
	rec, err := a.engine.Snooze(m.AlarmId)
	if err != nil {
		return "", nil, err
	}
	return common.UPDATE_SNOOZE_ALARM, &common.SnoozeResponse{
		SnoozeId:    rec.AlarmId,
		NextTrigger: rec.NextTrigger,
	}, nil
}

func (a *Api) subscribeHandler(conn *server.SyncConn, pool *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	id := pool.Subscribe(conn)
	return common.UPDATE_SUBSCRIBE, map[string]string{"client_id": id}, nil
}
