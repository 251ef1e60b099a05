package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flowtrack/flowtrack/internal/logging"
)

// Store wraps the SQLite database holding activity logs, sessions, and
// learned patterns.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the activity database at the given path,
// creating parent directories as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	logging.Debug("store", "opened %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the base schema and applies incremental migrations.
func (s *Store) migrate() error {
	schema := `
	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Raw activity log entries
	CREATE TABLE IF NOT EXISTS activity_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER,
		timestamp_start DATETIME NOT NULL,
		duration_sec INTEGER NOT NULL,
		details TEXT NOT NULL,
		productivity_score INTEGER,
		confidence_score INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES activity_sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_activity_logs_timestamp ON activity_logs(timestamp_start);
	CREATE INDEX IF NOT EXISTS idx_activity_logs_session ON activity_logs(session_id);

	-- Grouped activity sessions
	CREATE TABLE IF NOT EXISTS activity_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_name TEXT NOT NULL,
		productivity_score INTEGER,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		total_duration_sec INTEGER NOT NULL,
		user_confirmed BOOLEAN DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_activity_sessions_start ON activity_sessions(start_time);
	CREATE INDEX IF NOT EXISTS idx_activity_sessions_end ON activity_sessions(end_time);

	-- Learned naming patterns (keywords/apps/domains as JSON arrays)
	CREATE TABLE IF NOT EXISTS activity_patterns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pattern_name TEXT NOT NULL,
		session_type TEXT NOT NULL,
		keywords TEXT NOT NULL,
		apps TEXT NOT NULL,
		domains TEXT,
		usage_count INTEGER DEFAULT 1,
		success_rate INTEGER DEFAULT 100,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Record schema version
	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	return s.runMigrations()
}

// runMigrations applies incremental schema changes.
func (s *Store) runMigrations() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		version = 1
	}

	// Migration v2: partial index for the unsessionized backlog scan,
	// which runs on every batch pass.
	if version < 2 {
		s.db.Exec("CREATE INDEX IF NOT EXISTS idx_activity_logs_unsessionized ON activity_logs(timestamp_start) WHERE session_id IS NULL")
		s.db.Exec("INSERT INTO schema_version (version) VALUES (2)")
	}

	return nil
}

// Stats returns row counts per table.
func (s *Store) Stats() (map[string]int, error) {
	stats := make(map[string]int)
	tables := []string{"activity_logs", "activity_sessions", "activity_patterns"}
	for _, table := range tables {
		var count int
		err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			return nil, err
		}
		stats[table] = count
	}
	return stats, nil
}

// Clear removes all data (for testing/reset).
func (s *Store) Clear() error {
	tables := []string{"activity_logs", "activity_sessions", "activity_patterns"}
	for _, table := range tables {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
