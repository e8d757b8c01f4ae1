package wakecli

import (
	"encoding/json"

	"github.com/wakesync/wakesync/pkg/alarmlib"
)

// Handler defines the interface for processing daemon updates.
// Implementations receive raw JSON messages and are responsible for
// unmarshaling and processing them appropriately.
type Handler interface {
	Handle(json.RawMessage) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(json.RawMessage) error

func (f HandlerFunc) Handle(m json.RawMessage) error { return f(m) }

// NewTriggeredHandler creates a handler for alarm-fired broadcasts.
// The callback is invoked for each triggered alarm the daemon pushes.
func NewTriggeredHandler(callback func(*alarmlib.TriggeredAlarm) error) *TriggeredHandler {
	return &TriggeredHandler{Callback: callback}
}

// TriggeredHandler processes alarm-fired broadcasts from the daemon.
type TriggeredHandler struct {
	Callback func(*alarmlib.TriggeredAlarm) error
}

func (h *TriggeredHandler) Handle(m json.RawMessage) error {
	var v alarmlib.TriggeredAlarm
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	return h.Callback(&v)
}

// NewStateSyncHandler creates a handler for full-state broadcasts,
// pushed after recovery, bulk replace, and store-health transitions.
func NewStateSyncHandler(callback func([]alarmlib.AlarmSummary) error) *StateSyncHandler {
	return &StateSyncHandler{Callback: callback}
}

// StateSyncHandler processes full armed-set snapshots from the daemon.
type StateSyncHandler struct {
	Callback func([]alarmlib.AlarmSummary) error
}

func (h *StateSyncHandler) Handle(m json.RawMessage) error {
	var v []alarmlib.AlarmSummary
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	return h.Callback(v)
}
