package journal

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - sessions and exchanges tables
const currentSchemaVersion = 1

// ErrSessionExists is returned when a session token already has recorded
// exchanges. A session is one engine lifetime; replay feeds it to a single
// fresh handler, so it cannot be extended by a later run.
var ErrSessionExists = errors.New("session exists")

// Journal records boundary exchanges for one session.
// Safe for concurrent use.
type Journal struct {
	db      *sql.DB
	session string

	mu         sync.Mutex
	seq        int64
	registered bool
}

// Option configures a Journal.
type Option func(*Journal)

// WithSession fixes the session token instead of generating one. The token
// must not have been recorded before; Open fails with ErrSessionExists
// otherwise.
func WithSession(token string) Option {
	return func(j *Journal) {
		j.session = token
	}
}

// Open creates or opens a journal database at path.
// Applies required pragmas and migrations automatically.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	j := &Journal{db: db}
	for _, opt := range opts {
		opt(j)
	}
	if j.session == "" {
		j.session = NewSessionToken()
	}

	var exists bool
	if err := db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE token = ?)`, j.session,
	).Scan(&exists); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if exists {
		db.Close()
		return nil, fmt.Errorf("open session %q: %w", j.session, ErrSessionExists)
	}

	return j, nil
}

// NewSessionToken returns a fresh time-ordered session token (UUIDv7).
func NewSessionToken() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Session returns the token exchanges are recorded under.
func (j *Journal) Session() string {
	return j.session
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the version.
// Idempotent.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (j *Journal) verifyPragma(name, expected string) error {
	var value string
	if err := j.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
