// Package config resolves where entries are stored. Sources are tried in
// order: the --db flag (or TIMEBOX_DB), TIMEBOX_DB_CONNECTION, the discrete
// DB_* variables, the OS keyring, and finally the default SQLite file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/keyring"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/storage"
	"github.com/julianstephens/timebox/internal/storage/postgres"
	"github.com/julianstephens/timebox/internal/storage/sqlite"
)

// Source names where the database setting came from.
type Source string

const (
	SourceFlag          Source = "flag"
	SourceEnvConnection Source = "env:" + constants.EnvDBConnection
	SourceEnvParts      Source = "env:DB_*"
	SourceKeyring       Source = "keyring"
	SourceDefault       Source = "default"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Options are the raw inputs to Resolve. Getenv and Keyring default to the
// process environment and the OS keyring.
type Options struct {
	DB      string
	Getenv  func(string) string
	Keyring func() (string, error)
}

// Config is the resolved database location.
type Config struct {
	DB     string
	Driver Driver
	Source Source
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set win, and a missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("Loaded environment file", "path", path)
	return nil
}

// Resolve picks the database to use.
func Resolve(opts Options) (Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	fromKeyring := opts.Keyring
	if fromKeyring == nil {
		fromKeyring = keyring.GetConnectionString
	}

	if db := strings.TrimSpace(opts.DB); db != "" {
		if postgres.IsConnString(db) {
			// Anything typed on a command line ends up in shell history
			if _, err := postgres.ValidateConnString(db); err != nil {
				return Config{}, err
			}
			return Config{DB: db, Driver: DriverPostgres, Source: SourceFlag}, nil
		}
		path, err := homedir.Expand(db)
		if err != nil {
			return Config{}, fmt.Errorf("failed to expand %s: %w", db, err)
		}
		return Config{DB: path, Driver: DriverSQLite, Source: SourceFlag}, nil
	}

	if conn := strings.TrimSpace(getenv(constants.EnvDBConnection)); conn != "" {
		return Config{DB: conn, Driver: DriverPostgres, Source: SourceEnvConnection}, nil
	}

	if conn, ok := connFromParts(getenv); ok {
		return Config{DB: conn, Driver: DriverPostgres, Source: SourceEnvParts}, nil
	}

	conn, err := fromKeyring()
	switch {
	case err == nil && conn != "":
		return Config{DB: conn, Driver: DriverPostgres, Source: SourceKeyring}, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		logger.Debug("Keyring lookup failed, using default database", "error", err)
	}

	path, err := homedir.Expand(constants.DefaultConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve default database path: %w", err)
	}
	return Config{DB: path, Driver: DriverSQLite, Source: SourceDefault}, nil
}

// connFromParts builds a connection URL from DB_NAME, DB_USER, DB_PASSWORD,
// DB_HOST, DB_PORT and DB_SSLMODE. DB_NAME is required.
func connFromParts(getenv func(string) string) (string, bool) {
	name := strings.TrimSpace(getenv(constants.EnvDBName))
	if name == "" {
		return "", false
	}

	u := &url.URL{Scheme: "postgres", Path: "/" + name}

	host := strings.TrimSpace(getenv(constants.EnvDBHost))
	if host == "" {
		host = "localhost"
	}
	if port := strings.TrimSpace(getenv(constants.EnvDBPort)); port != "" {
		host = net.JoinHostPort(host, port)
	}
	u.Host = host

	if user := getenv(constants.EnvDBUser); user != "" {
		if pw := getenv(constants.EnvDBPassword); pw != "" {
			u.User = url.UserPassword(user, pw)
		} else {
			u.User = url.User(user)
		}
	}

	if mode := strings.TrimSpace(getenv(constants.EnvDBSSLMode)); mode != "" {
		u.RawQuery = url.Values{"sslmode": {mode}}.Encode()
	}

	return u.String(), true
}

// Describe is a display form of the database that never shows a password.
func (c Config) Describe() string {
	if c.Driver == DriverPostgres {
		return keyring.Mask(c.DB)
	}
	return c.DB
}

// ConfigDir is where logs and backups live.
func (c Config) ConfigDir() string {
	if c.Driver == DriverSQLite {
		return filepath.Dir(c.DB)
	}
	dir, err := homedir.Expand(filepath.Dir(constants.DefaultConfigPath))
	if err != nil {
		return "."
	}
	return dir
}

// NewStore returns the provider for the resolved database. It is neither
// initialized nor loaded.
func (c Config) NewStore() storage.Provider {
	if c.Driver == DriverPostgres {
		return postgres.New(c.DB)
	}
	return sqlite.NewStore(c.DB)
}

// Addr is the web listen address: flag, TIMEBOX_ADDR, then the default.
func Addr(flag string, getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if flag != "" {
		return flag
	}
	if addr := strings.TrimSpace(getenv(constants.EnvAddr)); addr != "" {
		return addr
	}
	return constants.DefaultAddr
}
