package alarmlib

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestClockTime(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "07:30", hour: 7, minute: 30},
		{in: "00:00", hour: 0, minute: 0},
		{in: "23:59", hour: 23, minute: 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "730", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		a := &Alarm{Time: tt.in}
		h, m, err := a.ClockTime()
		if tt.wantErr {
			if err == nil {
				t.Errorf("ClockTime(%q): expected error", tt.in)
			} else if !errors.Is(err, ErrInvalidTime) {
				t.Errorf("ClockTime(%q): error = %v, want ErrInvalidTime", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ClockTime(%q): %v", tt.in, err)
			continue
		}
		if h != tt.hour || m != tt.minute {
			t.Errorf("ClockTime(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.hour, tt.minute)
		}
	}
}

func TestRecurring(t *testing.T) {
	if (&Alarm{}).Recurring() {
		t.Error("empty day set should not be recurring")
	}
	if !(&Alarm{Days: []int{1}}).Recurring() {
		t.Error("non-empty day set should be recurring")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := &Alarm{Id: "a", Days: []int{1, 2}}
	c := a.Clone()
	c.Days[0] = 6
	if a.Days[0] != 1 {
		t.Error("Clone shares the Days slice")
	}
	if (*Alarm)(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestSnoozeAlarm(t *testing.T) {
	now := time.Date(2026, time.March, 4, 7, 30, 0, 0, time.UTC)
	parent := &Alarm{
		Id:      "wake",
		Enabled: true,
		Time:    "07:30",
		Days:    []int{1, 2, 3},
		Label:   "Wake up",
		Sound:   "chime",
	}
	s := SnoozeAlarm(parent, now, 5*time.Minute)

	if !strings.HasPrefix(s.Id, "wake-snooze-") {
		t.Errorf("snooze id = %q, want wake-snooze- prefix", s.Id)
	}
	if s.Time != "07:35" {
		t.Errorf("snooze time = %q, want 07:35", s.Time)
	}
	if s.Days != nil {
		t.Error("snooze must be one-time")
	}
	if !s.Enabled {
		t.Error("snooze must be enabled")
	}
	if s.Label != "Wake up" || s.Sound != "chime" {
		t.Error("snooze must carry over display fields")
	}
	if parent.Days == nil || parent.Time != "07:30" {
		t.Error("parent must not be mutated")
	}
}

func TestSnoozeAlarmCrossesMidnight(t *testing.T) {
	now := time.Date(2026, time.March, 4, 23, 58, 0, 0, time.UTC)
	s := SnoozeAlarm(&Alarm{Id: "late"}, now, 5*time.Minute)
	if s.Time != "00:03" {
		t.Errorf("snooze time = %q, want 00:03", s.Time)
	}
}
