package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/migration"
	"github.com/julianstephens/timebox/internal/storage"
	"github.com/julianstephens/timebox/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// Postgres SQLSTATE codes the store reacts to.
const (
	codeUniqueViolation = "23505"
	codeDuplicateTable  = "42P07"
	codeDuplicateObject = "42710"
)

func New(connStr string) *Store {
	return &Store{
		connStr: connStr,
	}
}

// IsConnString reports whether s looks like a Postgres URL or DSN rather than
// a SQLite file path.
func IsConnString(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") {
		return true
	}
	for _, field := range strings.Fields(s) {
		key, _, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(key) {
		case "host", "dbname", "user", "port":
			return true
		}
	}
	return false
}

// hasSSLMode checks if the connection string contains an sslmode parameter key (case-insensitive).
// It supports both URL-style and DSN-style connection strings.
func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}

	return false
}

// ValidateConnString checks if a connection string is a valid
// PostgreSQL connection string (URI or DSN) and ensures it does not
// contain a password.
//
// Passwords belong in the keyring or the DB_PASSWORD environment variable,
// never on the command line.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}

		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}

		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	} else {
		for _, pair := range strings.Fields(connStr) {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 && strings.ToLower(strings.TrimSpace(parts[0])) == "password" {
				return false, ErrEmbeddedCredentials
			}
		}
	}

	return true, nil
}

func (s *Store) open() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// A single user writes one row at a time; a few connections suffice
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("%w: failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", storage.ErrUnavailable, err)
		}
		return fmt.Errorf("%w: failed to connect to database: %w", storage.ErrUnavailable, err)
	}

	s.db = db
	return nil
}

func (s *Store) Init() error {
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
	return migration.NewRunner(s.db, migrations.Postgres(), migration.DriverPostgres)
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

// ensureUniqueDate asserts the one-row-per-date constraint. Tables created by
// the earlier web app may predate it; an existing constraint is not an error,
// and neither is a legacy table whose duplicate dates prevent adding it.
func (s *Store) ensureUniqueDate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (date)",
		constants.EntryTable, constants.UniqueDateConstraint,
	))
	if err == nil {
		logger.Info("Added unique constraint", "table", constants.EntryTable, "constraint", constants.UniqueDateConstraint)
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeDuplicateTable, codeDuplicateObject:
			logger.Debug("Unique constraint already exists", "constraint", constants.UniqueDateConstraint)
			return nil
		case codeUniqueViolation:
			logger.Warn("Entry table has duplicate dates, unique constraint not added; run 'timebox doctor'",
				"table", constants.EntryTable, "error", pqErr.Message)
			return nil
		}
	}
	return dialect.Classify(fmt.Errorf("failed to add unique constraint: %w", err))
}

func (s *Store) HasUniqueDate(ctx context.Context) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var count int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pg_constraint c
		JOIN pg_class t ON t.oid = c.conrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attname = 'date'
		WHERE t.relname = $1
		  AND pg_table_is_visible(t.oid)
		  AND c.contype = 'u'
		  AND c.conkey = ARRAY[a.attnum]`,
		constants.EntryTable,
	).Scan(&count)
	if err != nil {
		return false, dialect.Classify(err)
	}
	return count > 0, nil
}

func (s *Store) TableColumns(ctx context.Context) ([]storage.Column, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position`,
		constants.EntryTable,
	)
	if err != nil {
		return nil, dialect.Classify(err)
	}
	defer rows.Close()

	var cols []storage.Column
	for rows.Next() {
		var c storage.Column
		var nullable string
		if err := rows.Scan(&c.Name, &c.Type, &nullable); err != nil {
			return nil, err
		}
		c.Nullable = nullable == "YES"
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
	return string(migration.DriverPostgres)
}

func (s *Store) GetConfigPath() string {
	// Return a non-sensitive identifier instead of the full connection string
	return "postgresql"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == codeUniqueViolation
}

// isUnavailable reports connection level failures: broken connections,
// network errors and SQLSTATE class 08 (connection exception) or 57P
// (server shutting down).
func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57P")
	}
	return false
}
