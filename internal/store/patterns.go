package store

import (
	"encoding/json"
	"fmt"

	"github.com/flowtrack/flowtrack/internal/naming"
)

// Patterns returns all learned naming patterns. Implements
// naming.PatternSource.
func (s *Store) Patterns() ([]naming.Pattern, error) {
	rows, err := s.db.Query(`
		SELECT id, pattern_name, session_type, keywords, apps, domains, usage_count, success_rate
		FROM activity_patterns
		ORDER BY usage_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var out []naming.Pattern
	for rows.Next() {
		var p naming.Pattern
		var keywords, apps string
		var domains *string
		if err := rows.Scan(&p.ID, &p.Name, &p.SessionType, &keywords, &apps, &domains, &p.UsageCount, &p.SuccessRate); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
			return nil, fmt.Errorf("pattern %d has malformed keywords: %w", p.ID, err)
		}
		if err := json.Unmarshal([]byte(apps), &p.Apps); err != nil {
			return nil, fmt.Errorf("pattern %d has malformed apps: %w", p.ID, err)
		}
		if domains != nil && *domains != "" {
			if err := json.Unmarshal([]byte(*domains), &p.Domains); err != nil {
				return nil, fmt.Errorf("pattern %d has malformed domains: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SavePattern stores a learned pattern and returns its ID.
func (s *Store) SavePattern(p naming.Pattern) (int64, error) {
	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return 0, err
	}
	apps, err := json.Marshal(p.Apps)
	if err != nil {
		return 0, err
	}
	domains, err := json.Marshal(p.Domains)
	if err != nil {
		return 0, err
	}

	usage := p.UsageCount
	if usage == 0 {
		usage = 1
	}
	rate := p.SuccessRate
	if rate == 0 {
		rate = 100
	}

	res, err := s.db.Exec(`
		INSERT INTO activity_patterns (pattern_name, session_type, keywords, apps, domains, usage_count, success_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.SessionType, string(keywords), string(apps), string(domains), usage, rate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pattern: %w", err)
	}
	return res.LastInsertId()
}

// RecordPatternUse bumps a pattern's usage count and folds the
// confirmation outcome into its success rate as a running percentage.
func (s *Store) RecordPatternUse(id int64, confirmed bool) error {
	outcome := 0
	if confirmed {
		outcome = 100
	}
	res, err := s.db.Exec(`
		UPDATE activity_patterns
		SET success_rate = (success_rate * usage_count + ?) / (usage_count + 1),
		    usage_count = usage_count + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, outcome, id)
	if err != nil {
		return fmt.Errorf("failed to record pattern use: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pattern %d not found", id)
	}
	return nil
}
