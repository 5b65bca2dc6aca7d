package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/timebox/internal/cli"
	"github.com/julianstephens/timebox/internal/config"
	"github.com/julianstephens/timebox/internal/planner"
	"github.com/julianstephens/timebox/internal/storage/sqlite"
)

// setupTestDB returns a context over a SQLite store that has not been initialized.
func setupTestDB(t *testing.T, opts ...planner.Option) (*cli.Context, *sqlite.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "timebox.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{DB: dbPath, Driver: config.DriverSQLite, Source: config.SourceFlag}
	ctx := cli.NewContext(cfg, store)
	if len(opts) > 0 {
		ctx.Planner = planner.New(store, opts...)
	}
	return ctx, store, dbPath
}

func setupInitializedDB(t *testing.T, opts ...planner.Option) (*cli.Context, *sqlite.Store) {
	t.Helper()
	ctx, store, _ := setupTestDB(t, opts...)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return ctx, store
}

func insertRaw(t *testing.T, store *sqlite.Store, date, sched string) {
	t.Helper()
	if _, err := store.GetDB().Exec(
		"INSERT INTO timeboxing_entry (date, top_priorities, brain_dump, schedule) VALUES (?, '', '', ?)",
		date, sched,
	); err != nil {
		t.Fatal(err)
	}
}

func countEntries(t *testing.T, store *sqlite.Store) int {
	t.Helper()
	recs, err := store.ListEntries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return len(recs)
}
