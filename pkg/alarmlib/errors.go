package alarmlib

import "errors"

// Sentinel errors for the scheduling engine.
var (
	// ErrInvalidTime is returned when an alarm's time field is not a
	// valid "HH:MM" clock time.
	ErrInvalidTime = errors.New("invalid alarm time")

	// ErrNoOccurrence is returned when a definition has no computable
	// future occurrence.
	ErrNoOccurrence = errors.New("no next occurrence")

	// ErrStoreClosed is returned by store operations after Close.
	ErrStoreClosed = errors.New("schedule store is closed")

	// ErrEngineClosed is returned by engine operations after Shutdown.
	ErrEngineClosed = errors.New("engine is shut down")
)
