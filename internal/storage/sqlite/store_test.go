package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/timebox/internal/storage"
	"github.com/julianstephens/timebox/internal/validation"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "timebox.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitCreatesSchema(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	cols, err := store.TableColumns(ctx)
	if err != nil {
		t.Fatalf("TableColumns() error = %v", err)
	}
	var names []string
	for _, c := range cols {
		names = append(names, c.Name)
	}
	want := []string{"id", "date", "top_priorities", "brain_dump", "schedule"}
	if len(names) != len(want) {
		t.Fatalf("columns = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("column %d = %s, want %s", i, names[i], want[i])
		}
	}

	ok, err := store.HasUniqueDate(ctx)
	if err != nil || !ok {
		t.Errorf("HasUniqueDate() = %v, %v; want true", ok, err)
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if current != latest || latest < 1 {
		t.Errorf("SchemaVersion() = %d/%d", current, latest)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timebox.db")
	for i := 0; i < 2; i++ {
		store := NewStore(path)
		if err := store.Init(); err != nil {
			t.Fatalf("Init() #%d error = %v", i+1, err)
		}
		store.Close()
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("Load() on a missing database should fail")
	}
}

func TestLoadAdoptsLegacyTable(t *testing.T) {
	// A table written by the earlier web app: no schema_version, no index
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy := NewStore(path)
	if err := legacy.open(); err != nil {
		t.Fatal(err)
	}
	if _, err := legacy.db.Exec(`CREATE TABLE timeboxing_entry (
		id INTEGER PRIMARY KEY AUTOINCREMENT, date TEXT NOT NULL,
		top_priorities TEXT, brain_dump TEXT, schedule TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := legacy.db.Exec(`INSERT INTO timeboxing_entry (date, schedule) VALUES ('2024-03-01', '{"09:00":"Standup"}')`); err != nil {
		t.Fatal(err)
	}
	legacy.Close()

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() on legacy table error = %v", err)
	}
	defer store.Close()

	rec, err := store.GetEntry(context.Background(), "2024-03-01")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if string(rec.Schedule) != `{"09:00":"Standup"}` {
		t.Errorf("schedule = %s", rec.Schedule)
	}
	if ok, _ := store.HasUniqueDate(context.Background()); !ok {
		t.Error("unique index not added to legacy table")
	}
}

func TestLoadAdoptsLegacyTableWithDuplicateDates(t *testing.T) {
	// The earlier web app had no unique constraint, so a date may repeat
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy := NewStore(path)
	if err := legacy.open(); err != nil {
		t.Fatal(err)
	}
	if _, err := legacy.db.Exec(`CREATE TABLE timeboxing_entry (
		id INTEGER PRIMARY KEY AUTOINCREMENT, date TEXT NOT NULL,
		top_priorities TEXT, brain_dump TEXT, schedule TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := legacy.db.Exec(`INSERT INTO timeboxing_entry (date, top_priorities, schedule) VALUES
		('2024-03-01', 'first', '{"09:00":"Standup"}'),
		('2024-03-01', 'second', '{}')`); err != nil {
		t.Fatal(err)
	}
	legacy.Close()

	ctx := context.Background()
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() on legacy table with duplicate dates error = %v", err)
	}
	if ok, err := store.HasUniqueDate(ctx); err != nil || ok {
		t.Errorf("HasUniqueDate() = %v, %v; want false", ok, err)
	}
	store.Close()

	if err := store.Load(); err != nil {
		t.Fatalf("Load() on legacy table with duplicate dates error = %v", err)
	}
	defer store.Close()

	recs, err := store.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ListEntries() returned %d rows, want 2", len(recs))
	}
	res := validation.New().ValidateRecords(recs)
	found := false
	for _, c := range res.Conflicts {
		if c.Type == validation.ConflictDuplicateDate && c.Date == "2024-03-01" {
			found = true
		}
	}
	if !found {
		t.Errorf("duplicate date not reported:\n%s", res.FormatReport())
	}

	if _, err := store.UpsertEntry(ctx, storage.Record{Date: "2024-03-02", Schedule: []byte(`{}`)}); err != nil {
		t.Errorf("UpsertEntry() with duplicates present error = %v", err)
	}

	// Once the duplicates are gone the index is added on the next open
	if _, err := store.db.Exec("DELETE FROM timeboxing_entry WHERE top_priorities = 'second'"); err != nil {
		t.Fatal(err)
	}
	store.Close()
	if err := store.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok, err := store.HasUniqueDate(ctx); err != nil || !ok {
		t.Errorf("HasUniqueDate() after cleanup = %v, %v; want true", ok, err)
	}
}

func TestUpsertEntry(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.GetEntry(ctx, "2024-03-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetEntry() error = %v, want ErrNotFound", err)
	}

	first, err := store.UpsertEntry(ctx, storage.Record{
		Date:          "2024-03-01",
		TopPriorities: "ship",
		BrainDump:     "call mom",
		Schedule:      []byte(`{"09:00":{"task":"Standup","checked":true,"color":"#FF0000"}}`),
	})
	if err != nil {
		t.Fatalf("UpsertEntry() error = %v", err)
	}
	if !first.Created || first.ID == 0 {
		t.Errorf("first upsert = %+v, want created row", first)
	}

	second, err := store.UpsertEntry(ctx, storage.Record{
		Date:          "2024-03-01",
		TopPriorities: "ship it",
		Schedule:      []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("UpsertEntry() error = %v", err)
	}
	if second.Created || second.ID != first.ID {
		t.Errorf("second upsert = %+v, want update of id %d", second, first.ID)
	}

	var count int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM timeboxing_entry").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}

	rec, err := store.GetEntry(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if rec.TopPriorities != "ship it" || rec.BrainDump != "" || string(rec.Schedule) != `{}` {
		t.Errorf("GetEntry() = %+v", rec)
	}
}

func TestUpsertRetriesLostInsertRace(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.db.Exec("CREATE TABLE hide (n INTEGER)"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("INSERT INTO hide VALUES (1)"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpsertEntry(ctx, storage.Record{Date: "2024-03-01", TopPriorities: "first"}); err != nil {
		t.Fatal(err)
	}

	// The lookup misses the existing row once, as if another writer inserted
	// it after our SELECT.
	racing := dialect
	racing.SelectID = "SELECT id FROM timeboxing_entry WHERE date = ? AND NOT EXISTS (SELECT 1 FROM hide)"
	racing.IsUniqueViolation = func(err error) bool {
		if !isUniqueViolation(err) {
			return false
		}
		if _, err := store.db.Exec("DELETE FROM hide"); err != nil {
			t.Errorf("failed to reveal row: %v", err)
		}
		return true
	}

	res, err := storage.Upsert(ctx, store.db, racing, storage.Record{Date: "2024-03-01", TopPriorities: "second"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !res.Retried || res.Created {
		t.Errorf("Upsert() = %+v, want retried update", res)
	}

	rec, err := store.GetEntry(ctx, "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TopPriorities != "second" {
		t.Errorf("TopPriorities = %q, want second", rec.TopPriorities)
	}
}

func TestUpsertRollsBackOnFailure(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	broken := dialect
	broken.Update = "UPDATE no_such_table SET x = ?"
	if _, err := store.UpsertEntry(ctx, storage.Record{Date: "2024-03-01", TopPriorities: "kept"}); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.Upsert(ctx, store.db, broken, storage.Record{Date: "2024-03-01", TopPriorities: "lost"}); err == nil {
		t.Fatal("Upsert() with broken update should fail")
	}

	rec, err := store.GetEntry(ctx, "2024-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TopPriorities != "kept" {
		t.Errorf("TopPriorities = %q, want kept", rec.TopPriorities)
	}
}

func TestListEntriesNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"2024-03-01", "2024-03-03", "2024-02-28"} {
		if _, err := store.UpsertEntry(ctx, storage.Record{Date: d}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := store.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	want := []string{"2024-03-03", "2024-03-01", "2024-02-28"}
	if len(recs) != len(want) {
		t.Fatalf("ListEntries() returned %d entries, want %d", len(recs), len(want))
	}
	for i, d := range want {
		if recs[i].Date != d {
			t.Errorf("entry %d date = %s, want %s", i, recs[i].Date, d)
		}
	}
}

func TestPing(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	closed := NewStore(filepath.Join(t.TempDir(), "x.db"))
	if err := closed.Ping(context.Background()); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("Ping() on unopened store = %v, want ErrUnavailable", err)
	}
}

func TestUnreadableFileIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a sqlite database\n", 200)), 0600); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path)
	defer store.Close()

	err := store.Load()
	if err == nil {
		t.Fatal("Load() on a non-database file should fail")
	}
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("Load() error = %v, want ErrUnavailable", err)
	}
}

func TestClosedStoreIsUnavailableUntilReloaded(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := store.GetEntry(ctx, "2024-03-01"); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("GetEntry() after Close = %v, want ErrUnavailable", err)
	}
	if _, err := store.UpsertEntry(ctx, storage.Record{Date: "2024-03-01"}); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("UpsertEntry() after Close = %v, want ErrUnavailable", err)
	}

	if err := store.Load(); err != nil {
		t.Fatalf("Load() after Close error = %v", err)
	}
	if _, err := store.GetEntry(ctx, "2024-03-01"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetEntry() after reload = %v, want ErrNotFound", err)
	}
}
