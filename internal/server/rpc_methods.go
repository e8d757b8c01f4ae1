package server

import (
	"context"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"

	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/pkg/alarmlib"
)

// Custom JSON-RPC error codes for alarm operations.
const (
	codeAlarmNotFound = jrpc2.Code(-32001)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret  string // Auth token (required -- empty means RPC disabled)
	Port    int    // WebSocket listen port
	Version string // Daemon version
}

// RPCServer exposes the scheduling engine as JSON-RPC 2.0 methods for
// WebSocket clients.
type RPCServer struct {
	engine  *alarmlib.Engine
	version string
	methods handler.Map
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// NewRPCServer creates an RPCServer with its method table bound to the
// engine.
func NewRPCServer(cfg *RPCConfig, engine *alarmlib.Engine) *RPCServer {
	rs := &RPCServer{
		engine:  engine,
		version: cfg.Version,
	}
	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"system.getState":   handler.New(rs.systemGetState),
		"alarm.schedule":    handler.New(rs.alarmSchedule),
		"alarm.cancel":      handler.New(rs.alarmCancel),
		"alarm.update":      handler.New(rs.alarmUpdate),
		"alarm.list":        handler.New(rs.alarmList),
		"alarm.stats":       handler.New(rs.alarmStats),
		"alarm.recover":     handler.New(rs.alarmRecover),
		"alarm.clearMissed": handler.New(rs.alarmClearMissed),
		"alarm.sync":        handler.New(rs.alarmSync),
		"alarm.snooze":      handler.New(rs.alarmSnooze),
		"alarm.dismiss":     handler.New(rs.alarmDismiss),
		"alarm.health":      handler.New(rs.alarmHealth),
	}
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.version}, nil
}

func (rs *RPCServer) systemGetState(_ context.Context) (*common.WorkerStateResponse, error) {
	st := rs.engine.Stats()
	return &common.WorkerStateResponse{
		Version:       rs.version,
		StartedAt:     st.StartedAt,
		Armed:         st.Armed,
		StoreDegraded: st.StoreDegraded,
		LastRecovery:  st.LastRecovery,
	}, nil
}

func (rs *RPCServer) alarmSchedule(_ context.Context, p *common.ScheduleAlarmParams) (*common.ScheduleAlarmResponse, error) {
	if p.Alarm == nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: alarm"}
	}
	rec, err := rs.engine.Schedule(p.Alarm)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	resp := &common.ScheduleAlarmResponse{AlarmId: p.Alarm.Id}
	if rec != nil {
		resp.Armed = true
		resp.NextTrigger = rec.NextTrigger
	}
	return resp, nil
}

func (rs *RPCServer) alarmCancel(_ context.Context, p *common.CancelAlarmParams) (*common.AckResponse, error) {
	if p.AlarmId == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: alarm_id"}
	}
	rs.engine.Cancel(p.AlarmId)
	return &common.AckResponse{Done: true}, nil
}

func (rs *RPCServer) alarmUpdate(_ context.Context, p *common.UpdateAlarmsParams) (*common.UpdateAlarmsResponse, error) {
	armed := rs.engine.BulkReplace(p.Alarms)
	return &common.UpdateAlarmsResponse{Armed: armed}, nil
}

func (rs *RPCServer) alarmList(_ context.Context) (*common.ScheduledAlarmsResponse, error) {
	return &common.ScheduledAlarmsResponse{Alarms: rs.engine.Scheduled()}, nil
}

func (rs *RPCServer) alarmStats(_ context.Context) (*alarmlib.Stats, error) {
	stats := rs.engine.Stats()
	return &stats, nil
}

func (rs *RPCServer) alarmRecover(_ context.Context) (*common.AckResponse, error) {
	if err := rs.engine.RecoverAll(); err != nil {
		return nil, &jrpc2.Error{Code: codeAlarmNotFound, Message: err.Error()}
	}
	return &common.AckResponse{Done: true}, nil
}

func (rs *RPCServer) alarmClearMissed(_ context.Context) (*common.ClearMissedResponse, error) {
	n, err := rs.engine.ClearMissed()
	if err != nil {
		return nil, &jrpc2.Error{Code: codeAlarmNotFound, Message: err.Error()}
	}
	return &common.ClearMissedResponse{Cleared: n}, nil
}

func (rs *RPCServer) alarmSync(_ context.Context) (*common.ScheduledAlarmsResponse, error) {
	return &common.ScheduledAlarmsResponse{Alarms: rs.engine.StateSync()}, nil
}

func (rs *RPCServer) alarmSnooze(_ context.Context, p *common.CancelAlarmParams) (*common.SnoozeResponse, error) {
	if p.AlarmId == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: alarm_id"}
	}
	rec, err := rs.engine.Snooze(p.AlarmId)
	if err != nil || rec == nil {
		return nil, &jrpc2.Error{Code: codeAlarmNotFound, Message: "snooze could not be scheduled"}
	}
	return &common.SnoozeResponse{SnoozeId: rec.AlarmId, NextTrigger: rec.NextTrigger}, nil
}

func (rs *RPCServer) alarmDismiss(_ context.Context, p *common.CancelAlarmParams) (*common.AckResponse, error) {
	if p.AlarmId == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: alarm_id"}
	}
	rs.engine.Dismiss(p.AlarmId)
	return &common.AckResponse{Done: true}, nil
}

func (rs *RPCServer) alarmHealth(_ context.Context) (*alarmlib.Health, error) {
	h := rs.engine.HealthCheck()
	return &h, nil
}
