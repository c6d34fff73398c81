package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/orangewallet/orange/internal/event"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) a SQLite-backed store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The peek/acknowledge contract assumes a single logical writer; keep
	// the pool at one connection so an in-memory database behaves the same.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE TABLE IF NOT EXISTS queue_cursor (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		position INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO queue_cursor (id, position) VALUES (1, 0);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds an event at the end of the log.
func (s *SQLiteStore) Append(ctx context.Context, ev event.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO events (kind, timestamp, payload) VALUES (?, ?, ?)",
		string(ev.Kind), ev.Timestamp, payload,
	); err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	var length int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&length); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return length - 1, nil
}

// Peek returns the event at the cursor, or (nil, nil) when drained.
func (s *SQLiteStore) Peek(ctx context.Context) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT kind, timestamp, payload FROM events
		ORDER BY id LIMIT 1
		OFFSET (SELECT position FROM queue_cursor WHERE id = 1)`)

	var kind string
	var timestamp int64
	var payload []byte
	if err := row.Scan(&kind, &timestamp, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	ev := event.Event{Kind: event.Kind(kind), Timestamp: timestamp}
	if err := json.Unmarshal(payload, &ev.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &ev, nil
}

// Acknowledge atomically advances the cursor by one and persists it.
func (s *SQLiteStore) Acknowledge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin acknowledge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var position, length int64
	if err := tx.QueryRowContext(ctx, "SELECT position FROM queue_cursor WHERE id = 1").Scan(&position); err != nil {
		return fmt.Errorf("read cursor: %w", err)
	}
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&length); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if position >= length {
		return ErrNoPendingEvent
	}
	if _, err := tx.ExecContext(ctx, "UPDATE queue_cursor SET position = position + 1 WHERE id = 1"); err != nil {
		return fmt.Errorf("advance cursor: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit acknowledge: %w", err)
	}
	return nil
}

// Length returns the total number of events ever appended.
func (s *SQLiteStore) Length(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var length int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&length); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return length, nil
}

// Cursor returns the persisted cursor position.
func (s *SQLiteStore) Cursor(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var position int64
	if err := s.db.QueryRowContext(ctx, "SELECT position FROM queue_cursor WHERE id = 1").Scan(&position); err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}
	return position, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
