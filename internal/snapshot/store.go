package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry records a folder's pre-modification analysis settings. Nil pointer
// fields mean the setting was unset when captured; restoring them removes the
// key rather than writing an empty value.
type Entry struct {
	FolderURI  string
	Include    *[]string
	Exclude    *[]string
	Strictness *string
	CapturedAt time.Time
}

// Store persists snapshot entries in SQLite so restoration survives a daemon
// crash between capture and teardown.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		folder_uri TEXT PRIMARY KEY,
		include TEXT,
		exclude TEXT,
		strictness TEXT,
		captured_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init snapshot schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Capture records the entry only if no snapshot exists for the folder yet.
// The first-seen state always wins; repeated toggles within a session must
// not overwrite it. Reports whether a new row was written.
func (s *Store) Capture(e Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	include, err := marshalList(e.Include)
	if err != nil {
		return false, err
	}
	exclude, err := marshalList(e.Exclude)
	if err != nil {
		return false, err
	}

	var strictness sql.NullString
	if e.Strictness != nil {
		strictness = sql.NullString{String: *e.Strictness, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT OR IGNORE INTO snapshots (folder_uri, include, exclude, strictness, captured_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.FolderURI, include, exclude, strictness, time.Now().UTC())

	if err != nil {
		return false, fmt.Errorf("capture snapshot: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Get returns the folder's snapshot, or nil when none exists.
func (s *Store) Get(folderURI string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT folder_uri, include, exclude, strictness, captured_at
		FROM snapshots WHERE folder_uri = ?
	`, folderURI)

	entry, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return entry, nil
}

// All returns every snapshot entry, ordered by folder URI.
func (s *Store) All() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT folder_uri, include, exclude, strictness, captured_at
		FROM snapshots ORDER BY folder_uri ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func (s *Store) Delete(folderURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM snapshots WHERE folder_uri = ?", folderURI); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func scanEntry(scan func(...any) error) (*Entry, error) {
	entry := &Entry{}
	var include, exclude, strictness sql.NullString
	var capturedAt sql.NullTime

	if err := scan(&entry.FolderURI, &include, &exclude, &strictness, &capturedAt); err != nil {
		return nil, err
	}

	var err error
	if entry.Include, err = unmarshalList(include); err != nil {
		return nil, err
	}
	if entry.Exclude, err = unmarshalList(exclude); err != nil {
		return nil, err
	}
	if strictness.Valid {
		v := strictness.String
		entry.Strictness = &v
	}
	if capturedAt.Valid {
		entry.CapturedAt = capturedAt.Time
	}

	return entry, nil
}

// marshalList keeps the unset/empty distinction across persistence: a nil
// list becomes SQL NULL, an empty list becomes "[]".
func marshalList(list *[]string) (any, error) {
	if list == nil {
		return nil, nil
	}
	data, err := json.Marshal(*list)
	if err != nil {
		return nil, fmt.Errorf("marshal pattern list: %w", err)
	}
	return string(data), nil
}

func unmarshalList(v sql.NullString) (*[]string, error) {
	if !v.Valid {
		return nil, nil
	}
	list := []string{}
	if err := json.Unmarshal([]byte(v.String), &list); err != nil {
		return nil, fmt.Errorf("unmarshal pattern list: %w", err)
	}
	return &list, nil
}
