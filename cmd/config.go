package cmd

const DESCRIPTION = `
wakesync is an offline-resilient alarm scheduler. The waked daemon
keeps every alarm durably stored, arms timers for the next occurrence
of each one, and replays alarms that were missed while the daemon was
not running.
`

const (
	ScheduleDescription = `The schedule command arms an alarm on the daemon. A one-time
alarm fires at the next occurrence of its wall-clock time; pass
--days to make it recur on specific weekdays (0=Sunday).

Example:
        wakesync schedule --id wake --time 07:30 --days 1,2,3,4,5

`
	CancelDescription = `The cancel command disarms an alarm and removes its stored
schedule. Cancelling an unknown id is not an error.

Example:
        wakesync cancel wake

`
	ListDescription = `The list command displays every armed alarm along with its
next trigger time, soonest first.

Example:
        wakesync list

`
	StatsDescription = `The stats command shows the daemon's scheduling counters:
armed alarms, totals for scheduled, cancelled, triggered and
recovered alarms, and the store health.

Example:
        wakesync stats

`
	RecoverDescription = `The recover command forces a full recovery scan: the daemon
re-reads its schedule store, replays recently missed alarms and
re-arms the rest.

Example:
        wakesync recover

`
	ClearMissedDescription = `The clear-missed command deletes all missed-alarm records
from the daemon's store.

Example:
        wakesync clear-missed

`
	SyncDescription = `The sync command asks the daemon to broadcast its full
armed-alarm state to every connected client and prints it.

Example:
        wakesync sync

`
	WatchDescription = `The watch command subscribes to the daemon's broadcast stream
and prints every alarm event as it happens.

Example:
        wakesync watch

`
	SnoozeDescription = `The snooze command pushes a fired alarm out by the daemon's
snooze interval.

Example:
        wakesync snooze wake

`
	DismissDescription = `The dismiss command acknowledges a fired alarm and clears its
notification.

Example:
        wakesync dismiss wake

`
)
