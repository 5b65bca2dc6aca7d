package validation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/schedule"
	"github.com/julianstephens/timebox/internal/storage"
)

// ConflictType represents the kind of problem found in a stored entry
type ConflictType string

const (
	ConflictInvalidDate       ConflictType = "invalid_date"
	ConflictDuplicateDate     ConflictType = "duplicate_date"
	ConflictMalformedSchedule ConflictType = "malformed_schedule"
	ConflictLegacySlots       ConflictType = "legacy_slots"
	ConflictUnknownKeys       ConflictType = "unknown_keys"
	ConflictIncompleteGrid    ConflictType = "incomplete_grid"
)

// Conflict represents one problem with one stored entry
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // YYYY-MM-DD format
	ID          int64
	// Healable is set when re-saving the entry in structured form fixes it
	Healable bool
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
	Checked   int
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HealableDates lists the dates a rewrite would fix, each once, sorted
func (vr *ValidationResult) HealableDates() []string {
	seen := make(map[string]bool)
	var dates []string
	for _, c := range vr.Conflicts {
		if c.Healable && !seen[c.Date] {
			seen[c.Date] = true
			dates = append(dates, c.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator audits stored entries against the structured schedule shape
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateRecords checks every record and collects the conflicts found
func (v *Validator) ValidateRecords(recs []storage.Record) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}, Checked: len(recs)}

	byDate := make(map[string][]int64)
	for _, rec := range recs {
		byDate[rec.Date] = append(byDate[rec.Date], rec.ID)
		result.Conflicts = append(result.Conflicts, v.ValidateRecord(rec)...)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		if ids := byDate[d]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateDate,
				Description: fmt.Sprintf("%s has %d rows (IDs: %v)", d, len(ids), ids),
				Date:        d,
			})
		}
	}

	return result
}

// ValidateRecord checks a single record
func (v *Validator) ValidateRecord(rec storage.Record) []Conflict {
	var conflicts []Conflict

	validDate := models.ValidDate(rec.Date)
	if !validDate {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("Entry %d has invalid date %q", rec.ID, rec.Date),
			Date:        rec.Date,
			ID:          rec.ID,
		})
	}

	raw, err := schedule.Decode(rec.Schedule)
	if err != nil {
		if errors.Is(err, schedule.ErrMalformed) {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictMalformedSchedule,
				Description: fmt.Sprintf("%s: schedule is not a JSON object (%v)", rec.Date, err),
				Date:        rec.Date,
				ID:          rec.ID,
				Healable:    validDate,
			})
		}
		return conflicts
	}

	// A row without schedule data is read as the empty grid; nothing to fix
	if raw == nil {
		return conflicts
	}

	st := schedule.Inspect(raw)
	if st.Legacy > 0 || st.Other > 0 {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictLegacySlots,
			Description: fmt.Sprintf("%s: %d legacy and %d unreadable slot(s)", rec.Date, st.Legacy, st.Other),
			Date:        rec.Date,
			ID:          rec.ID,
			Healable:    validDate,
		})
	}
	if st.Unknown > 0 {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictUnknownKeys,
			Description: fmt.Sprintf("%s: %d key(s) outside the 05:00-23:30 grid", rec.Date, st.Unknown),
			Date:        rec.Date,
			ID:          rec.ID,
			Healable:    validDate,
		})
	}
	if st.Missing > 0 {
		conflicts = append(conflicts, Conflict{
			Type:        ConflictIncompleteGrid,
			Description: fmt.Sprintf("%s: %d of %d slot(s) missing", rec.Date, st.Missing, schedule.SlotCount),
			Date:        rec.Date,
			ID:          rec.ID,
			Healable:    validDate,
		})
	}

	return conflicts
}
