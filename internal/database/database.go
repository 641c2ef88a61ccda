package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dupesweep/internal/dedupe"
)

// AuditDB manages the SQLite audit log of deletion outcomes. One row is
// written per candidate per run, whatever the outcome, so partial failures
// stay visible after the fact.
type AuditDB struct {
	db *sql.DB
}

// Actions recorded in the audit log.
const (
	ActionDelete   = "DELETE"   // candidate removed
	ActionDryRun   = "DRY_RUN"  // candidate reported, dry-run mode
	ActionDeclined = "DECLINED" // candidate spared by negative confirmation
	ActionSkip     = "SKIP"     // candidate blocked by the safety validator
	ActionError    = "ERROR"    // removal attempted and failed
)

// AuditRecord is one row of the audit log.
type AuditRecord struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Path         string    `json:"path"`
	FileName     string    `json:"file_name"`
	Size         int64     `json:"size"`
	Digest       string    `json:"digest"`
	SurvivorPath string    `json:"survivor_path"`
	Policy       string    `json:"policy"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// NewAuditDB opens (creating if needed) the audit database and initializes
// the schema.
func NewAuditDB(dbPath string) (*AuditDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing.
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A trivial query forces file creation and surfaces permission problems
	// earlier than Ping would.
	if _, err = db.Exec("SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL: readers (the query tool) never block the writer.
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	adb := &AuditDB{db: db}
	if err = adb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return adb, nil
}

func (a *AuditDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		size INTEGER NOT NULL,

		digest TEXT NOT NULL,
		survivor_path TEXT,
		policy TEXT,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON deletions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON deletions(action);
	CREATE INDEX IF NOT EXISTS idx_path ON deletions(path);
	CREATE INDEX IF NOT EXISTS idx_digest ON deletions(digest);
	CREATE INDEX IF NOT EXISTS idx_size ON deletions(size);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := a.db.Exec(schema)
	return err
}

// RecordOutcome inserts one audit row for a deletion candidate.
func (a *AuditDB) RecordOutcome(action string, candidate dedupe.FileRecord, plan dedupe.DeletionPlan, policy dedupe.SurvivorPolicy, errorMsg string) error {
	query := `
	INSERT INTO deletions (
		timestamp, action, path, file_name, size,
		digest, survivor_path, policy, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := a.db.Exec(
		query,
		time.Now().UTC(),
		action,
		candidate.Path,
		filepath.Base(candidate.Path),
		candidate.Size,
		plan.Digest.Hex(),
		plan.Survivor.Path,
		string(policy),
		errorMsg,
	)
	return err
}

// Close closes the database connection
func (a *AuditDB) Close() error {
	return a.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (a *AuditDB) Vacuum() error {
	_, err := a.db.Exec("VACUUM")
	return err
}
