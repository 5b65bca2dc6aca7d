package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/migration"
	"github.com/julianstephens/timebox/internal/storage"
	"github.com/julianstephens/timebox/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; the pragmas below stick to the single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return dialect.Classify(fmt.Errorf("failed to configure database: %w", err))
	}

	s.db = db
	return nil
}

func (s *Store) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return s.ensureUniqueDate(context.Background())
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'timebox init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runner().ValidateVersion(); err != nil {
		return dialect.Classify(err)
	}

	if cols, err := s.TableColumns(context.Background()); err == nil {
		logger.Debug("Entry table structure", "table", constants.EntryTable, "columns", len(cols))
	}

	return s.ensureUniqueDate(context.Background())
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// conn returns the open pool, or ErrUnavailable once closed.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: database not opened", storage.ErrUnavailable)
	}
	return s.db, nil
}

func (s *Store) runner() *migration.Runner {
	return migration.NewRunner(s.db, migrations.SQLite(), migration.DriverSQLite)
}

func (s *Store) Migrate(logFn func(string)) (int, error) {
	return s.runner().ApplyMigrations(logFn)
}

func (s *Store) SchemaVersion() (int, int, error) {
	r := s.runner()
	current, err := r.GetCurrentVersion()
	if err != nil {
		return 0, 0, err
	}
	latest, err := r.GetLatestVersion()
	if err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// ensureUniqueDate asserts the one-row-per-date index. A legacy table that
// already holds duplicate dates keeps working without it; doctor reports the
// duplicates.
func (s *Store) ensureUniqueDate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (date)",
		constants.UniqueDateConstraint, constants.EntryTable,
	))
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		logger.Warn("Entry table has duplicate dates, unique index not added; run 'timebox doctor'",
			"table", constants.EntryTable, "error", err)
		return nil
	}
	return dialect.Classify(fmt.Errorf("failed to add unique constraint: %w", err))
}

func (s *Store) HasUniqueDate(ctx context.Context) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	rows, err := db.QueryContext(ctx, "SELECT name, \"unique\" FROM pragma_index_list(?)", constants.EntryTable)
	if err != nil {
		return false, dialect.Classify(err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var name string
		var unique bool
		if err := rows.Scan(&name, &unique); err != nil {
			return false, err
		}
		if name == constants.UniqueDateConstraint && unique {
			found = true
		}
	}
	return found, rows.Err()
}

func (s *Store) TableColumns(ctx context.Context) ([]storage.Column, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT name, type, \"notnull\" FROM pragma_table_info(?)", constants.EntryTable)
	if err != nil {
		return nil, dialect.Classify(err)
	}
	defer rows.Close()

	var cols []storage.Column
	for rows.Next() {
		var c storage.Column
		var notNull bool
		if err := rows.Scan(&c.Name, &c.Type, &notNull); err != nil {
			return nil, err
		}
		c.Nullable = !notNull
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("%w: database not opened", storage.ErrUnavailable)
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Driver() string {
	return string(migration.DriverSQLite)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func sqliteCode(err error) (int, bool) {
	var sqlErr *msqlite.Error
	if !errors.As(err, &sqlErr) {
		return 0, false
	}
	return sqlErr.Code(), true
}

func isUniqueViolation(err error) bool {
	code, ok := sqliteCode(err)
	return ok && code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// isUnavailable reports failures to reach the database file at all, as
// opposed to statement errors.
func isUnavailable(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	switch code & 0xff {
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR:
		return true
	}
	return false
}
