package alarmlib

import (
	"testing"
	"time"
)

// Wednesday, March 4 2026.
var occBase = time.Date(2026, time.March, 4, 6, 0, 0, 0, time.UTC)

func TestNextOccurrence_OneTimeLaterToday(t *testing.T) {
	a := &Alarm{Id: "a", Enabled: true, Time: "07:30"}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	want := time.Date(2026, time.March, 4, 7, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_OneTimePastRollsToTomorrow(t *testing.T) {
	a := &Alarm{Id: "a", Enabled: true, Time: "05:00"}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	want := time.Date(2026, time.March, 5, 5, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_StrictlyAfterNow(t *testing.T) {
	// Now is exactly the alarm's clock time; the occurrence must be
	// tomorrow, not now.
	a := &Alarm{Id: "a", Enabled: true, Time: "06:00"}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if !next.After(occBase) {
		t.Errorf("next = %v, not strictly after now %v", next, occBase)
	}
	want := time.Date(2026, time.March, 5, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_RecurringSameDayAhead(t *testing.T) {
	// Wednesday is day 3; alarm recurs on Wednesday at a later time.
	a := &Alarm{Id: "a", Enabled: true, Time: "08:00", Days: []int{3}}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	want := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_RecurringWrapsToNextWeek(t *testing.T) {
	// Wednesday alarm whose time already passed today wraps a week.
	a := &Alarm{Id: "a", Enabled: true, Time: "05:00", Days: []int{3}}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	want := time.Date(2026, time.March, 11, 5, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_RecurringPicksEarliestDay(t *testing.T) {
	// From Wednesday 06:00, a Mon/Fri alarm lands on Friday first.
	a := &Alarm{Id: "a", Enabled: true, Time: "07:00", Days: []int{1, 5}}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	want := time.Date(2026, time.March, 6, 7, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_SundayIsZero(t *testing.T) {
	a := &Alarm{Id: "a", Enabled: true, Time: "09:00", Days: []int{0}}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if next.Weekday() != time.Sunday {
		t.Errorf("next weekday = %v, want Sunday", next.Weekday())
	}
	want := time.Date(2026, time.March, 8, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_Midnight(t *testing.T) {
	a := &Alarm{Id: "a", Enabled: true, Time: "00:00"}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	want := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextOccurrence_InvalidTime(t *testing.T) {
	for _, bad := range []string{"", "7", "25:00", "12:60", "ab:cd", "12:5x"} {
		a := &Alarm{Id: "a", Enabled: true, Time: bad}
		if _, ok := NextOccurrence(a, occBase); ok {
			t.Errorf("time %q: expected no occurrence", bad)
		}
	}
}

func TestNextOccurrence_NoValidDays(t *testing.T) {
	a := &Alarm{Id: "a", Enabled: true, Time: "07:00", Days: []int{7, -1, 99}}
	if _, ok := NextOccurrence(a, occBase); ok {
		t.Error("expected no occurrence for invalid day set")
	}
}

func TestNextOccurrence_IgnoresInvalidDaysAmongValid(t *testing.T) {
	a := &Alarm{Id: "a", Enabled: true, Time: "08:00", Days: []int{9, 3}}
	next, ok := NextOccurrence(a, occBase)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if next.Weekday() != time.Wednesday {
		t.Errorf("next weekday = %v, want Wednesday", next.Weekday())
	}
}
