package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/logging"
	"github.com/flowtrack/flowtrack/internal/session"
)

// SaveSession persists a session and assigns it the given member
// activities. Membership is write-once: members already belonging to
// another session are left alone, and their count is returned alongside
// the new session ID.
func (s *Store) SaveSession(sess session.Session, memberIDs []int64) (int64, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO activity_sessions (session_name, productivity_score, start_time, end_time, total_duration_sec, user_confirmed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.Name, sess.Score, sess.Start.UTC(), sess.End.UTC(), sess.TotalDurationSec, sess.UserConfirmed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, 0, err
	}

	assigned := 0
	for _, memberID := range memberIDs {
		r, err := tx.Exec(`
			UPDATE activity_logs SET session_id = ? WHERE id = ? AND session_id IS NULL`,
			id, memberID)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to assign activity %d: %w", memberID, err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			assigned++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, assigned, nil
}

// SessionActivities returns the members of a session, ordered by start
// time.
func (s *Store) SessionActivities(sessionID int64) ([]activity.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_start, duration_sec, details, productivity_score, confidence_score, session_id
		FROM activity_logs
		WHERE session_id = ?
		ORDER BY timestamp_start`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session activities: %w", err)
	}
	defer rows.Close()
	return scanActivities(rows)
}

// SessionsBetween returns sessions starting in [from, to), ordered by
// start time.
func (s *Store) SessionsBetween(from, to time.Time) ([]session.Session, error) {
	rows, err := s.db.Query(`
		SELECT id, session_name, productivity_score, start_time, end_time, total_duration_sec, user_confirmed
		FROM activity_sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// LastSessionEndBefore returns the latest session end at or before t,
// looking back at most window. The second return is false when no such
// session exists.
func (s *Store) LastSessionEndBefore(t time.Time, window time.Duration) (time.Time, bool, error) {
	var end time.Time
	err := s.db.QueryRow(`
		SELECT end_time FROM activity_sessions
		WHERE end_time <= ? AND end_time >= ?
		ORDER BY end_time DESC LIMIT 1`,
		t.UTC(), t.Add(-window).UTC()).Scan(&end)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return end.UTC(), true, nil
}

// FirstSessionStartAfter returns the earliest session start at or after
// t, looking ahead at most window.
func (s *Store) FirstSessionStartAfter(t time.Time, window time.Duration) (time.Time, bool, error) {
	var start time.Time
	err := s.db.QueryRow(`
		SELECT start_time FROM activity_sessions
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time ASC LIMIT 1`,
		t.UTC(), t.Add(window).UTC()).Scan(&start)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return start.UTC(), true, nil
}

// RecomputeScoresForDay re-derives the time-weighted score of every
// session starting on the given day from its members' current scores.
// Run after late classification lands so session scores track their
// activities.
func (s *Store) RecomputeScoresForDay(day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	sessions, err := s.SessionsBetween(dayStart, dayEnd)
	if err != nil {
		return err
	}

	for _, sess := range sessions {
		var totalSec, weightedSum, scored int
		rows, err := s.db.Query(`
			SELECT duration_sec, productivity_score FROM activity_logs
			WHERE timestamp_start >= ? AND timestamp_start <= ? AND productivity_score IS NOT NULL`,
			sess.Start.UTC(), sess.End.UTC())
		if err != nil {
			return fmt.Errorf("failed to query session %d members: %w", sess.ID, err)
		}
		for rows.Next() {
			var dur, score int
			if err := rows.Scan(&dur, &score); err != nil {
				rows.Close()
				return err
			}
			totalSec += dur
			weightedSum += score * dur
			scored++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if totalSec == 0 || scored == 0 {
			continue
		}
		newScore := int(math.Round(float64(weightedSum) / float64(totalSec)))
		if newScore == sess.Score {
			continue
		}
		if _, err := s.db.Exec(`UPDATE activity_sessions SET productivity_score = ? WHERE id = ?`, newScore, sess.ID); err != nil {
			return fmt.Errorf("failed to update session %d score: %w", sess.ID, err)
		}
		logging.Info("store", "recomputed session %d score: %d (%d scored activities)", sess.ID, newScore, scored)
	}
	return nil
}

func scanSessions(rows *sql.Rows) ([]session.Session, error) {
	var out []session.Session
	for rows.Next() {
		var sess session.Session
		var score sql.NullInt64
		var start, end time.Time
		if err := rows.Scan(&sess.ID, &sess.Name, &score, &start, &end, &sess.TotalDurationSec, &sess.UserConfirmed); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if score.Valid {
			sess.Score = int(score.Int64)
		}
		sess.Start = start.UTC()
		sess.End = end.UTC()
		out = append(out, sess)
	}
	return out, rows.Err()
}
