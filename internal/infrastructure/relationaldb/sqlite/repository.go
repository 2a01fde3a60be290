// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	moderncsqlite "modernc.org/sqlite" // Pure Go SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One connection: the CLI is single-threaded and ":memory:" databases are
	// per connection.
	db.SetMaxOpenConns(1)

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Persons (identity records that links point at)
	CREATE TABLE IF NOT EXISTS persons (
		numero_h TEXT PRIMARY KEY,
		prenom TEXT NOT NULL,
		nom_famille TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT 'OTHER',
		birth_date TEXT NOT NULL DEFAULT '',
		death_date TEXT NOT NULL DEFAULT '',
		photo TEXT NOT NULL DEFAULT '',
		generation TEXT NOT NULL DEFAULT '',
		declared TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_persons_family ON persons(nom_famille);

	-- Parent-child links (directed parent -> child)
	CREATE TABLE IF NOT EXISTS parent_child_links (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL,
		child_id TEXT NOT NULL,
		parent_role TEXT NOT NULL DEFAULT 'father',
		status TEXT NOT NULL DEFAULT 'pending',
		initiator_id TEXT NOT NULL,
		link_code TEXT,
		maternity_number TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		confirmed_at TIMESTAMP,
		UNIQUE(parent_id, child_id, parent_role),
		CHECK(parent_id <> child_id),
		CHECK(status IN ('pending', 'active')),
		CHECK(parent_role IN ('father', 'mother'))
	);
	CREATE INDEX IF NOT EXISTS idx_pc_links_parent ON parent_child_links(parent_id);
	CREATE INDEX IF NOT EXISTS idx_pc_links_child ON parent_child_links(child_id);

	-- Couple links (symmetric, ids stored in lexical order)
	CREATE TABLE IF NOT EXISTS couple_links (
		id TEXT PRIMARY KEY,
		person_id1 TEXT NOT NULL,
		person_id2 TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		initiator_id TEXT NOT NULL,
		marriage_number TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		confirmed_at TIMESTAMP,
		UNIQUE(person_id1, person_id2),
		CHECK(person_id1 < person_id2),
		CHECK(status IN ('pending', 'active'))
	);
	CREATE INDEX IF NOT EXISTS idx_couple_links_p1 ON couple_links(person_id1);
	CREATE INDEX IF NOT EXISTS idx_couple_links_p2 ON couple_links(person_id2);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_couple_links_marriage
		ON couple_links(marriage_number) WHERE marriage_number IS NOT NULL;

	-- Audit log (tracks link lifecycle actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		link_id TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_link ON audit_log(link_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// classify wraps a driver error with the matching domain sentinel: missing
// rows are not found, UNIQUE and PRIMARY KEY violations are conflicts, CHECK
// violations are validation errors and everything else is a transport error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, entities.ErrNotFound)
	}

	var se *moderncsqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		if se.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK {
			return fmt.Errorf("%s: %w: %w", op, entities.ErrValidation, err)
		}
		return fmt.Errorf("%s: %w: %w", op, entities.ErrConflict, err)
	}

	return fmt.Errorf("%s: %w: %w", op, entities.ErrTransport, err)
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
