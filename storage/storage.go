// Storage module - SQLite activity log

package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage records handled bot activity for the status endpoint.
// Task state itself lives in memory; this log is observability only.
type Storage struct {
	db *sql.DB

	stmtRecord *sql.Stmt
	stmtRecent *sql.Stmt
}

// Activity is one handled message
type Activity struct {
	ID        int64     `json:"id"`
	Day       string    `json:"day"`
	UserID    string    `json:"user_id"`
	Intent    string    `json:"intent"`
	ReplyKind string    `json:"reply_kind"`
	CreatedAt time.Time `json:"created_at"`
}

func New(dbPath string) (*Storage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path required")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection failed: %v", err)
	}

	s := &Storage{db: db}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("[WARN] Storage: failed to set WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous: %v", err)
	}

	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	if err := s.initPreparedStmts(); err != nil {
		log.Printf("[WARN] Failed to prepare statements: %v (continuing without prepared statements)", err)
	}

	log.Printf("[OK] Storage: database %s", dbPath)
	return s, nil
}

func (s *Storage) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day TEXT NOT NULL,
			user_id TEXT NOT NULL,
			intent TEXT NOT NULL,
			reply_kind TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_activity_day ON activity(day)`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_activity_intent ON activity(intent)`); err != nil {
		return err
	}
	return nil
}

func (s *Storage) initPreparedStmts() error {
	var err error

	if s.stmtRecord, err = s.db.Prepare("INSERT INTO activity (day, user_id, intent, reply_kind) VALUES (?, ?, ?, ?)"); err != nil {
		return fmt.Errorf("RecordActivity: %v", err)
	}
	if s.stmtRecent, err = s.db.Prepare("SELECT id, day, user_id, intent, reply_kind, created_at FROM activity ORDER BY id DESC LIMIT ?"); err != nil {
		return fmt.Errorf("GetRecent: %v", err)
	}
	return nil
}

// RecordActivity logs one handled message. Failures are logged and
// swallowed so the reply path never depends on the activity log.
func (s *Storage) RecordActivity(day, userID, intent, replyKind string) {
	var err error
	if s.stmtRecord != nil {
		_, err = s.stmtRecord.Exec(day, userID, intent, replyKind)
	} else {
		_, err = s.db.Exec(
			"INSERT INTO activity (day, user_id, intent, reply_kind) VALUES (?, ?, ?, ?)",
			day, userID, intent, replyKind,
		)
	}
	if err != nil {
		log.Printf("[WARN] Storage: record activity failed: %v", err)
	}
}

// GetRecent returns the most recent activity entries, newest first
func (s *Storage) GetRecent(limit int) ([]Activity, error) {
	var rows *sql.Rows
	var err error

	if s.stmtRecent != nil {
		rows, err = s.stmtRecent.Query(limit)
	} else {
		rows, err = s.db.Query(
			"SELECT id, day, user_id, intent, reply_kind, created_at FROM activity ORDER BY id DESC LIMIT ?",
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Day, &a.UserID, &a.Intent, &a.ReplyKind, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// IntentCounts returns how many messages each intent handled
func (s *Storage) IntentCounts() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT intent, COUNT(*) as count
		FROM activity
		GROUP BY intent
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var intent string
		var count int
		if err := rows.Scan(&intent, &count); err != nil {
			return nil, err
		}
		counts[intent] = count
	}
	return counts, rows.Err()
}

// DayCounts returns how many messages were handled per day
func (s *Storage) DayCounts() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT day, COUNT(*) as count
		FROM activity
		GROUP BY day
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day] = count
	}
	return counts, rows.Err()
}

func (s *Storage) Close() error {
	return s.db.Close()
}
