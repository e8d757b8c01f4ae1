package alarmlib

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scheduled_alarms (
	alarm_id     TEXT PRIMARY KEY,
	snapshot     TEXT NOT NULL,
	next_trigger INTEGER NOT NULL,
	scheduled_at INTEGER NOT NULL,
	enabled      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scheduled_alarms_enabled
	ON scheduled_alarms(enabled);

CREATE TABLE IF NOT EXISTS missed_alarms (
	id             TEXT PRIMARY KEY,
	alarm_id       TEXT NOT NULL,
	scheduled_time INTEGER NOT NULL,
	missed_time    INTEGER NOT NULL,
	snapshot       TEXT NOT NULL,
	recovered      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS app_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore is the durable schedule store backed by a single SQLite
// database file. Per-key upserts ride on SQLite's statement atomicity.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the schedule database at
// path and ensures the schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schedule db: %w", err)
	}
	// modernc sqlite serializes writes through a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schedule db schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) PutScheduled(rec *ScheduledAlarm) error {
	snap, err := json.Marshal(rec.Alarm)
	if err != nil {
		return fmt.Errorf("encode alarm snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO scheduled_alarms
			(alarm_id, snapshot, next_trigger, scheduled_at, enabled)
		VALUES (?, ?, ?, ?, ?)`,
		rec.AlarmId, string(snap),
		rec.NextTrigger.UnixMilli(), rec.ScheduledAt.UnixMilli(),
		boolToInt(rec.Enabled),
	)
	if err != nil {
		return fmt.Errorf("put scheduled alarm %s: %w", rec.AlarmId, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteScheduled(alarmId string) error {
	_, err := s.db.Exec(`DELETE FROM scheduled_alarms WHERE alarm_id = ?`, alarmId)
	if err != nil {
		return fmt.Errorf("delete scheduled alarm %s: %w", alarmId, err)
	}
	return nil
}

func (s *SQLiteStore) GetScheduled(alarmId string) (*ScheduledAlarm, error) {
	row := s.db.QueryRow(`
		SELECT alarm_id, snapshot, next_trigger, scheduled_at, enabled
		FROM scheduled_alarms WHERE alarm_id = ?`, alarmId)
	rec, err := scanScheduled(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (s *SQLiteStore) ActiveScheduled() ([]*ScheduledAlarm, error) {
	rows, err := s.db.Query(`
		SELECT alarm_id, snapshot, next_trigger, scheduled_at, enabled
		FROM scheduled_alarms WHERE enabled = 1
		ORDER BY next_trigger ASC`)
	if err != nil {
		return nil, fmt.Errorf("query active alarms: %w", err)
	}
	defer rows.Close()

	var recs []*ScheduledAlarm
	for rows.Next() {
		rec, err := scanScheduled(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) PutMissed(rec *MissedAlarm) error {
	snap, err := json.Marshal(rec.Alarm)
	if err != nil {
		return fmt.Errorf("encode missed snapshot: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO missed_alarms
			(id, alarm_id, scheduled_time, missed_time, snapshot, recovered)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Id, rec.AlarmId,
		rec.ScheduledTime.UnixMilli(), rec.MissedTime.UnixMilli(),
		string(snap), boolToInt(rec.Recovered),
	)
	if err != nil {
		return fmt.Errorf("put missed alarm %s: %w", rec.Id, err)
	}
	return nil
}

func (s *SQLiteStore) MissedAlarms() ([]*MissedAlarm, error) {
	rows, err := s.db.Query(`
		SELECT id, alarm_id, scheduled_time, missed_time, snapshot, recovered
		FROM missed_alarms ORDER BY missed_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query missed alarms: %w", err)
	}
	defer rows.Close()

	var recs []*MissedAlarm
	for rows.Next() {
		var (
			rec                   MissedAlarm
			snap                  string
			scheduledMs, missedMs int64
			recovered             int
		)
		if err := rows.Scan(&rec.Id, &rec.AlarmId, &scheduledMs, &missedMs, &snap, &recovered); err != nil {
			return nil, fmt.Errorf("scan missed alarm: %w", err)
		}
		if err := json.Unmarshal([]byte(snap), &rec.Alarm); err != nil {
			return nil, fmt.Errorf("decode missed snapshot %s: %w", rec.Id, err)
		}
		rec.ScheduledTime = time.UnixMilli(scheduledMs)
		rec.MissedTime = time.UnixMilli(missedMs)
		rec.Recovered = recovered != 0
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore) ClearMissed() (int, error) {
	res, err := s.db.Exec(`DELETE FROM missed_alarms`)
	if err != nil {
		return 0, fmt.Errorf("clear missed alarms: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) SetAppState(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode app state %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, string(b), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set app state %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) GetAppState(key string, dst any) (bool, error) {
	var b string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&b)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get app state %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(b), dst); err != nil {
		return false, fmt.Errorf("decode app state %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dst ...any) error
}

func scanScheduled(row rowScanner) (*ScheduledAlarm, error) {
	var (
		rec             ScheduledAlarm
		snap            string
		nextMs, schedMs int64
		enabled         int
	)
	if err := row.Scan(&rec.AlarmId, &snap, &nextMs, &schedMs, &enabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan scheduled alarm: %w", err)
	}
	if err := json.Unmarshal([]byte(snap), &rec.Alarm); err != nil {
		return nil, fmt.Errorf("decode alarm snapshot %s: %w", rec.AlarmId, err)
	}
	rec.NextTrigger = time.UnixMilli(nextMs)
	rec.ScheduledAt = time.UnixMilli(schedMs)
	rec.Enabled = enabled != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteStore)(nil)
