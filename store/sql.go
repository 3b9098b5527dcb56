package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder style and column types.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLState stores the kv pairs in a single two-column table.
// Both columns are binary so the packed keys survive untouched.
type SQLState struct {
	db      *sql.DB
	dialect Dialect
	q       queries
}

type queries struct {
	get    string
	upsert string
	delete string
}

func queriesFor(d Dialect) queries {
	if d == DialectPostgres {
		return queries{
			get:    "SELECT v FROM okinoko_kv WHERE k = $1",
			upsert: "INSERT INTO okinoko_kv (k, v) VALUES ($1, $2) ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v",
			delete: "DELETE FROM okinoko_kv WHERE k = $1",
		}
	}
	return queries{
		get:    "SELECT v FROM okinoko_kv WHERE k = ?",
		upsert: "INSERT INTO okinoko_kv (k, v) VALUES (?, ?) ON CONFLICT (k) DO UPDATE SET v = excluded.v",
		delete: "DELETE FROM okinoko_kv WHERE k = ?",
	}
}

// OpenSQLite opens (or creates) a sqlite database file. ":memory:" works for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLState, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps sqlite from returning SQLITE_BUSY and pins ":memory:" to a single db
	db.SetMaxOpenConns(1)
	s, err := NewSQLState(ctx, db, DialectSQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects through lib/pq.
func OpenPostgres(ctx context.Context, dsn string) (*SQLState, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s, err := NewSQLState(ctx, db, DialectPostgres)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLState wraps an already opened handle and creates the table if needed.
func NewSQLState(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLState, error) {
	s := &SQLState{db: db, dialect: dialect, q: queriesFor(dialect)}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return s, nil
}

func (s *SQLState) migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS okinoko_kv (k BLOB PRIMARY KEY, v BLOB NOT NULL)`
	if s.dialect == DialectPostgres {
		query = `CREATE TABLE IF NOT EXISTS okinoko_kv (k BYTEA PRIMARY KEY, v BYTEA NOT NULL)`
	}
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *SQLState) Get(ctx context.Context, key string) (*string, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, s.q.get, []byte(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	out := string(v)
	return &out, nil
}

func (s *SQLState) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.q.upsert, []byte(key), []byte(value)); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return nil
}

func (s *SQLState) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.delete, []byte(key)); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Apply runs all mutations inside one transaction.
func (s *SQLState) Apply(ctx context.Context, muts []Mutation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, m := range muts {
		if m.Value == nil {
			_, err = tx.ExecContext(ctx, s.q.delete, []byte(m.Key))
		} else {
			_, err = tx.ExecContext(ctx, s.q.upsert, []byte(m.Key), []byte(*m.Value))
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLState) Close() error {
	return s.db.Close()
}
