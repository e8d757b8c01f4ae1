// Package alarmlib implements the offline-resilient alarm scheduling
// engine behind the waked daemon. A single Engine instance owns the
// durable schedule store, the in-memory armed-timer index, a
// min-heap scheduler goroutine with a 60-second max-sleep cap (which
// rides out NTP steps, DST transitions, and system sleep), and a
// recovery loop that heals the index from the store after restarts
// and detects alarms missed while the daemon was not running.
//
// Persistence always precedes in-memory arming, so after a crash the
// store is the correct ground truth and startup recovery restores,
// replays (late, inside a grace window), or expires each record.
package alarmlib
