package system

import (
	"strings"
	"testing"
	"time"
)

func TestDoctorCmd_Healthy(t *testing.T) {
	ctx, _ := setupInitializedDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor on a fresh database failed: %v", err)
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, _, _ := setupTestDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail when the database does not exist")
	}
}

func TestDoctorCmd_LegacyRowsFailValidation(t *testing.T) {
	ctx, store := setupInitializedDB(t)
	insertRaw(t, store, "2024-03-01", `{"09:00":"Standup"}`)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should report legacy rows")
	}
}

func TestDoctorCmd_DuplicateDatesReported(t *testing.T) {
	ctx, store := setupInitializedDB(t)
	if _, err := store.GetDB().Exec("DROP INDEX unique_date"); err != nil {
		t.Fatal(err)
	}
	insertRaw(t, store, "2024-03-01", `{}`)
	insertRaw(t, store, "2024-03-01", `{}`)
	store.Close()

	if err := store.Load(); err != nil {
		t.Fatalf("Load() with duplicate dates error = %v", err)
	}
	if err := checkUniqueDate(ctx); err == nil {
		t.Error("checkUniqueDate should fail without the index")
	}
	err := checkValidation(ctx)
	if err == nil || !strings.Contains(err.Error(), "2024-03-01 has 2 rows") {
		t.Errorf("checkValidation() = %v, want the duplicate date reported", err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should report duplicate dates")
	}
}

func TestCheckValidationMessage(t *testing.T) {
	ctx, store := setupInitializedDB(t)
	insertRaw(t, store, "2024-03-01", `not json`)

	err := checkValidation(ctx)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "timebox heal") {
		t.Errorf("error %q should point at heal", err)
	}
}

func TestCheckTableStructure(t *testing.T) {
	ctx, store := setupInitializedDB(t)
	if err := checkTableStructure(ctx); err != nil {
		t.Fatalf("fresh schema: %v", err)
	}
	if err := checkUniqueDate(ctx); err != nil {
		t.Fatalf("fresh schema: %v", err)
	}

	if _, err := store.GetDB().Exec("ALTER TABLE timeboxing_entry DROP COLUMN brain_dump"); err != nil {
		t.Fatal(err)
	}
	err := checkTableStructure(ctx)
	if err == nil || !strings.Contains(err.Error(), "brain_dump") {
		t.Errorf("checkTableStructure() = %v, want missing brain_dump", err)
	}
}

func TestCheckClockTimezone(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"current", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), false},
		{"epoch", time.Unix(0, 0), true},
		{"far future", time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkClockTimezone(tt.now); (err != nil) != tt.wantErr {
				t.Errorf("checkClockTimezone() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMigrateCmd(t *testing.T) {
	ctx, _ := setupInitializedDB(t)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Errorf("migrate on an up-to-date database failed: %v", err)
	}
}
