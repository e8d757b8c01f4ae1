package alarmlib

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

// NextOccurrence computes the next wall-clock instant at which the
// alarm should fire, strictly after now, in now's location.
//
// One-time alarms (empty day set) resolve to the next daily occurrence
// of their clock time: today if still ahead, otherwise tomorrow.
// Recurring alarms resolve to the earliest listed weekday whose clock
// time is still strictly ahead of now.
//
// The second return is false when no occurrence exists: an unparsable
// time field, or a non-empty day set containing no valid weekday.
// The function is pure; callers own all side effects.
func NextOccurrence(a *Alarm, now time.Time) (time.Time, bool) {
	hour, minute, err := a.ClockTime()
	if err != nil {
		return time.Time{}, false
	}
	expr, ok := cronExpr(a, hour, minute)
	if !ok {
		return time.Time{}, false
	}
	next, err := gronx.NextTickAfter(expr, now, false)
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}

// cronExpr renders the alarm as a five-field cron expression. Weekday
// indices match cron's day-of-week field directly (0=Sunday).
func cronExpr(a *Alarm, hour, minute int) (string, bool) {
	if !a.Recurring() {
		return fmt.Sprintf("%d %d * * *", minute, hour), true
	}
	days := a.validDays()
	if len(days) == 0 {
		return "", false
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(parts, ",")), true
}
