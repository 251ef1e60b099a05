package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
)

// InsertActivity stores a raw activity log entry and returns its
// assigned ID.
func (s *Store) InsertActivity(r activity.Record) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO activity_logs (timestamp_start, duration_sec, details, productivity_score, confidence_score, session_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Start.UTC(), r.DurationSec, r.Details, r.Score, r.Confidence, r.SessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert activity: %w", err)
	}
	return res.LastInsertId()
}

// UpdateClassification records a classifier verdict on an existing
// activity.
func (s *Store) UpdateClassification(id int64, score, confidence int) error {
	res, err := s.db.Exec(`
		UPDATE activity_logs SET productivity_score = ?, confidence_score = ? WHERE id = ?`,
		score, confidence, id)
	if err != nil {
		return fmt.Errorf("failed to update classification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("activity %d not found", id)
	}
	return nil
}

// ActivitiesBetween returns all activities starting in [from, to),
// ordered by start time.
func (s *Store) ActivitiesBetween(from, to time.Time) ([]activity.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_start, duration_sec, details, productivity_score, confidence_score, session_id
		FROM activity_logs
		WHERE timestamp_start >= ? AND timestamp_start < ?
		ORDER BY timestamp_start`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

// UnclassifiedActivities returns activities with no productivity score
// yet, oldest first, up to limit.
func (s *Store) UnclassifiedActivities(limit int) ([]activity.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_start, duration_sec, details, productivity_score, confidence_score, session_id
		FROM activity_logs
		WHERE productivity_score IS NULL
		ORDER BY timestamp_start
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unclassified activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

// unsessionizedActivities returns activities not yet assigned to a
// session, zero-duration entries excluded, ordered by start time.
func (s *Store) unsessionizedActivities() ([]activity.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_start, duration_sec, details, productivity_score, confidence_score, session_id
		FROM activity_logs
		WHERE session_id IS NULL AND duration_sec > 0
		ORDER BY timestamp_start`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unsessionized activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

func scanActivities(rows *sql.Rows) ([]activity.Record, error) {
	var out []activity.Record
	for rows.Next() {
		var r activity.Record
		var start time.Time
		if err := rows.Scan(&r.ID, &start, &r.DurationSec, &r.Details, &r.Score, &r.Confidence, &r.SessionID); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		r.Start = start.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
