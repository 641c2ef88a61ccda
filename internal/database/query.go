package database

import "time"

const auditColumns = `id, timestamp, action, path, file_name, size,
	digest, survivor_path, policy, error_message`

// GetRecent returns the N most recent audit rows.
func (a *AuditDB) GetRecent(limit int) ([]AuditRecord, error) {
	query := `
	SELECT ` + auditColumns + `
	FROM deletions
	ORDER BY timestamp DESC
	LIMIT ?
	`
	return a.queryRecords(query, limit)
}

// GetByAction returns audit rows filtered by action type.
func (a *AuditDB) GetByAction(action string) ([]AuditRecord, error) {
	query := `
	SELECT ` + auditColumns + `
	FROM deletions
	WHERE action = ?
	ORDER BY timestamp DESC
	`
	return a.queryRecords(query, action)
}

// GetByDigest returns every recorded outcome for one content digest.
func (a *AuditDB) GetByDigest(digest string) ([]AuditRecord, error) {
	query := `
	SELECT ` + auditColumns + `
	FROM deletions
	WHERE digest = ?
	ORDER BY timestamp DESC
	`
	return a.queryRecords(query, digest)
}

// GetByPath returns audit rows matching a path pattern (SQL LIKE syntax).
func (a *AuditDB) GetByPath(pathPattern string) ([]AuditRecord, error) {
	query := `
	SELECT ` + auditColumns + `
	FROM deletions
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`
	return a.queryRecords(query, pathPattern)
}

// GetLargest returns the N largest successful deletions by size.
func (a *AuditDB) GetLargest(limit int) ([]AuditRecord, error) {
	query := `
	SELECT ` + auditColumns + `
	FROM deletions
	WHERE action = 'DELETE'
	ORDER BY size DESC
	LIMIT ?
	`
	return a.queryRecords(query, limit)
}

// Stats summarizes audit activity over a recent window.
type Stats struct {
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	TotalDeleted   int64          `json:"total_deleted"`
	TotalErrors    int64          `json:"total_errors"`
	BytesReclaimed int64          `json:"bytes_reclaimed"`
	ByAction       map[string]int `json:"by_action"`
}

// GetStats returns aggregate statistics for the last N days.
func (a *AuditDB) GetStats(days int) (*Stats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	stats := &Stats{
		StartDate: start,
		EndDate:   end,
		ByAction:  make(map[string]int),
	}

	err := a.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(size), 0)
		FROM deletions
		WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`, start, end).Scan(&stats.TotalDeleted, &stats.BytesReclaimed)
	if err != nil {
		return nil, err
	}

	err = a.db.QueryRow(`
		SELECT COUNT(*)
		FROM deletions
		WHERE action = 'ERROR' AND timestamp BETWEEN ? AND ?
	`, start, end).Scan(&stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	rows, err := a.db.Query(`
		SELECT action, COUNT(*)
		FROM deletions
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY action
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
	}
	return stats, rows.Err()
}

func (a *AuditDB) queryRecords(query string, args ...interface{}) ([]AuditRecord, error) {
	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Path, &r.FileName, &r.Size,
			&r.Digest, &r.SurvivorPath, &r.Policy, &r.ErrorMessage,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
