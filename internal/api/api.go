package api

import (
	"github.com/wakesync/wakesync/common"
	"github.com/wakesync/wakesync/internal/server"
	"github.com/wakesync/wakesync/pkg/alarmlib"
	"github.com/wakesync/wakesync/pkg/logger"
)

// Api binds the daemon's command surface to the scheduling engine.
type Api struct {
	log     logger.Logger
	engine  *alarmlib.Engine
	perms   alarmlib.PermissionProvider
	version string
}

// NewApi creates the command surface over the given engine. perms may
// be nil, in which case notification permission is reported granted.
func NewApi(l logger.Logger, engine *alarmlib.Engine, perms alarmlib.PermissionProvider, version string) *Api {
	return &Api{
		log:     l,
		engine:  engine,
		perms:   perms,
		version: version,
	}
}

// RegisterHandlers attaches every command handler to the server.
func (a *Api) RegisterHandlers(s *server.Server) {
	s.RegisterHandler(common.UPDATE_SCHEDULE_ALARM, a.scheduleAlarmHandler)
	s.RegisterHandler(common.UPDATE_CANCEL_ALARM, a.cancelAlarmHandler)
	s.RegisterHandler(common.UPDATE_UPDATE_ALARMS, a.updateAlarmsHandler)
	s.RegisterHandler(common.UPDATE_GET_SCHEDULED, a.getScheduledHandler)
	s.RegisterHandler(common.UPDATE_FORCE_RECOVERY, a.forceRecoveryHandler)
	s.RegisterHandler(common.UPDATE_HEALTH_CHECK, a.healthCheckHandler)
	s.RegisterHandler(common.UPDATE_GET_STATS, a.getStatsHandler)
	s.RegisterHandler(common.UPDATE_CLEAR_MISSED, a.clearMissedHandler)
	s.RegisterHandler(common.UPDATE_SYNC_STATE, a.syncStateHandler)
	s.RegisterHandler(common.UPDATE_REQUEST_PERMISSION, a.requestPermissionHandler)
	s.RegisterHandler(common.UPDATE_GET_WORKER_STATE, a.getWorkerStateHandler)
	s.RegisterHandler(common.UPDATE_DISMISS_ALARM, a.dismissAlarmHandler)
	s.RegisterHandler(common.UPDATE_SNOOZE_ALARM, a.snoozeAlarmHandler)
	s.RegisterHandler(common.UPDATE_SUBSCRIBE, a.subscribeHandler)
}
