package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/timebox/internal/storage/sqlite"
)

func TestInitCmd_Success(t *testing.T) {
	ctx, _, dbPath := setupTestDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupTestDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, store, _ := setupTestDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	insertRaw(t, store, "2024-03-01", "{}")

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("force init failed: %v", err)
	}
	if n := countEntries(t, store); n != 0 {
		t.Errorf("force init kept %d entries, want 0", n)
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, _, dbPath := setupTestDB(t)

	cmd := &InitCmd{Force: true, Source: dbPath}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "legacy.db")
	src := sqlite.NewStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatal(err)
	}
	insertRaw(t, src, "2024-03-01", `{"09:00":"Standup"}`)
	insertRaw(t, src, "2024-03-02", `{}`)
	src.Close()

	ctx, store, _ := setupTestDB(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}
	if n := countEntries(t, store); n != 2 {
		t.Errorf("copied %d entries, want 2", n)
	}
}
