package alarmlib

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Alarm is a user-defined alarm as received from the UI layer. The
// engine treats it as read-only: it is snapshotted into a
// ScheduledAlarm at arming time and never mutated afterwards.
type Alarm struct {
	Id      string `json:"id"`
	Enabled bool   `json:"enabled"`
	// Time is the local time of day in "HH:MM" (24h) form.
	Time string `json:"time"`
	// Days holds weekday indices (0=Sunday..6=Saturday). An empty set
	// means a one-time alarm.
	Days []int `json:"days"`

	// Display and behavior fields, passed through to delivery unchanged.
	Label      string `json:"label,omitempty"`
	Sound      string `json:"sound,omitempty"`
	VoiceMood  string `json:"voiceMood,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	UserId     string `json:"userId,omitempty"`
}

// Recurring reports whether the alarm re-arms itself after firing.
func (a *Alarm) Recurring() bool {
	return len(a.Days) > 0
}

// Clone returns a deep copy of the alarm, used for snapshotting.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}
	c := *a
	if a.Days != nil {
		c.Days = append([]int(nil), a.Days...)
	}
	return &c
}

// ClockTime parses the alarm's "HH:MM" field.
func (a *Alarm) ClockTime() (hour, minute int, err error) {
	parts := strings.SplitN(a.Time, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
	}
	return hour, minute, nil
}

// validDays returns the subset of Days that are real weekday indices.
func (a *Alarm) validDays() []int {
	days := make([]int, 0, len(a.Days))
	for _, d := range a.Days {
		if d >= 0 && d <= 6 {
			days = append(days, d)
		}
	}
	return days
}

// SnoozeAlarm derives a synthetic one-time alarm that fires after d,
// carrying over the parent's display fields. Snoozing is not a special
// timer type: the result goes through the normal scheduling path.
func SnoozeAlarm(parent *Alarm, now time.Time, d time.Duration) *Alarm {
	at := now.Add(d)
	snooze := parent.Clone()
	snooze.Id = fmt.Sprintf("%s-snooze-%d", parent.Id, now.UnixMilli())
	snooze.Enabled = true
	snooze.Time = fmt.Sprintf("%02d:%02d", at.Hour(), at.Minute())
	snooze.Days = nil
	return snooze
}
