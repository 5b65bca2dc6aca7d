package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/storage"
	"github.com/julianstephens/timebox/internal/storage/postgres"
	"github.com/julianstephens/timebox/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initialization."`
	Source string `help:"Database path or connection string to copy entries from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized timebox storage at: %s\n", ctx.Config.Describe())

	if c.Source != "" {
		fmt.Printf("Copying entries from: %s\n", c.Source)
		n, err := c.copyEntries(ctx)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Printf("Copied %d entries.\n", n)
	}

	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errors.New("--force only applies to SQLite databases")
	}

	dbPath := ctx.Store.GetConfigPath()
	if absDB, err := filepath.Abs(dbPath); err == nil {
		dbPath = absDB
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyEntries upserts every entry of the source store into the destination.
// Rows are copied as stored; legacy schedules stay legacy until healed.
func (c *InitCmd) copyEntries(ctx *cli.Context) (int, error) {
	var source storage.Provider
	if postgres.IsConnString(c.Source) {
		if _, err := postgres.ValidateConnString(c.Source); err != nil {
			return 0, err
		}
		source = postgres.New(c.Source)
	} else {
		path, err := homedir.Expand(c.Source)
		if err != nil {
			return 0, err
		}
		source = sqlite.NewStore(path)
	}

	if err := source.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	bg := context.Background()
	recs, err := source.ListEntries(bg)
	if err != nil {
		return 0, err
	}
	for _, rec := range recs {
		if _, err := ctx.Store.UpsertEntry(bg, rec); err != nil {
			return 0, fmt.Errorf("failed to copy entry for %s: %w", rec.Date, err)
		}
	}
	return len(recs), nil
}
