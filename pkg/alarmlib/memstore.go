package alarmlib

import (
	"bytes"
	"encoding/json"
	"sync"
)

// MemStore is an in-memory Store. The daemon falls back to it when the
// SQLite store cannot be opened, and tests use it as a fake.
type MemStore struct {
	mu        sync.RWMutex
	scheduled map[string]*ScheduledAlarm
	missed    []*MissedAlarm
	appState  map[string][]byte
	closed    bool

	// FailNext, when non-nil, is returned by the next mutating call and
	// then cleared. Lets tests exercise degraded-mode paths.
	FailNext error
}

func NewMemStore() *MemStore {
	return &MemStore{
		scheduled: make(map[string]*ScheduledAlarm),
		appState:  make(map[string][]byte),
	}
}

func (s *MemStore) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *MemStore) PutScheduled(rec *ScheduledAlarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.takeFailure(); err != nil {
		return err
	}
	cp := *rec
	cp.Alarm = rec.Alarm.Clone()
	s.scheduled[rec.AlarmId] = &cp
	return nil
}

func (s *MemStore) DeleteScheduled(alarmId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.takeFailure(); err != nil {
		return err
	}
	delete(s.scheduled, alarmId)
	return nil
}

func (s *MemStore) GetScheduled(alarmId string) (*ScheduledAlarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	rec, ok := s.scheduled[alarmId]
	if !ok {
		return nil, nil
	}
	cp := *rec
	cp.Alarm = rec.Alarm.Clone()
	return &cp, nil
}

func (s *MemStore) ActiveScheduled() ([]*ScheduledAlarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	var recs []*ScheduledAlarm
	for _, rec := range s.scheduled {
		if !rec.Enabled {
			continue
		}
		cp := *rec
		cp.Alarm = rec.Alarm.Clone()
		recs = append(recs, &cp)
	}
	return recs, nil
}

func (s *MemStore) PutMissed(rec *MissedAlarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.takeFailure(); err != nil {
		return err
	}
	cp := *rec
	cp.Alarm = rec.Alarm.Clone()
	s.missed = append(s.missed, &cp)
	return nil
}

func (s *MemStore) MissedAlarms() ([]*MissedAlarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	return append([]*MissedAlarm(nil), s.missed...), nil
}

func (s *MemStore) ClearMissed() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	n := len(s.missed)
	s.missed = nil
	return n, nil
}

func (s *MemStore) SetAppState(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.appState[key] = b
	return nil
}

func (s *MemStore) GetAppState(key string, dst any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrStoreClosed
	}
	b, ok := s.appState[key]
	if !ok {
		return false, nil
	}
	return true, json.NewDecoder(bytes.NewReader(b)).Decode(dst)
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemStore)(nil)
