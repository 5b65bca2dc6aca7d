// Package planner loads and saves daily entries, reconciling stored schedule
// documents with the fixed half-hour grid on the way in and out.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/logger"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/schedule"
	"github.com/julianstephens/timebox/internal/storage"
	"github.com/julianstephens/timebox/internal/validation"
)

// ErrInvalidDate is returned for dates that are not YYYY-MM-DD calendar dates.
var ErrInvalidDate = errors.New("invalid date")

// Service is the entry point both surfaces use to read and write entries.
type Service struct {
	store storage.Provider
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current local date as YYYY-MM-DD.
func (s *Service) Today() string {
	return s.now().Format(constants.DateFormat)
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) Store() storage.Provider {
	return s.store
}

func normalizeDate(date string) (string, error) {
	t, err := models.ParseDate(date)
	if err != nil {
		return "", fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, strings.TrimSpace(date))
	}
	return t.Format(constants.DateFormat), nil
}

// Load returns the entry for date with the schedule reconciled against the
// full grid. A date with no row yields an empty entry, not an error. A stored
// schedule that cannot be parsed is logged and read as empty.
func (s *Service) Load(ctx context.Context, date string) (models.Entry, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return models.Entry{}, err
	}

	rec, err := s.store.GetEntry(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Entry{Date: date, Schedule: schedule.Empty()}, nil
	}
	if err != nil {
		return models.Entry{}, fmt.Errorf("failed to load entry for %s: %w", date, err)
	}

	return entryFromRecord(rec), nil
}

func entryFromRecord(rec storage.Record) models.Entry {
	raw, err := schedule.Decode(rec.Schedule)
	if err != nil {
		logger.Warn("Stored schedule is malformed, reading as empty", "date", rec.Date, "id", rec.ID, "error", err)
		raw = nil
	}

	return models.Entry{
		ID:            rec.ID,
		Date:          rec.Date,
		TopPriorities: rec.TopPriorities,
		BrainDump:     rec.BrainDump,
		Schedule:      schedule.Reconcile(raw, schedule.Keys()),
	}
}

// SaveResult reports the outcome of a save.
type SaveResult struct {
	Date    string
	ID      int64
	Created bool
	Message string
}

// Save writes the entry keyed by its date. The schedule is always written in
// structured form for every grid key; keys outside the grid are dropped.
// Nothing is persisted when an error is returned.
func (s *Service) Save(ctx context.Context, e models.Entry) (SaveResult, error) {
	date, err := normalizeDate(e.Date)
	if err != nil {
		return SaveResult{}, err
	}

	data, err := schedule.Encode(e.Schedule)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to encode schedule: %w", err)
	}

	res, err := s.store.UpsertEntry(ctx, storage.Record{
		Date:          date,
		TopPriorities: e.TopPriorities,
		BrainDump:     e.BrainDump,
		Schedule:      data,
	})
	if err != nil {
		logger.Error("Failed to save entry", "date", date, "error", err)
		return SaveResult{}, fmt.Errorf("failed to save entry for %s: %w", date, err)
	}
	if res.Retried {
		logger.Info("Concurrent first save resolved as update", "date", date, "id", res.ID)
	}
	logger.Debug("Entry saved", "date", date, "id", res.ID, "created", res.Created)

	return SaveResult{
		Date:    date,
		ID:      res.ID,
		Created: res.Created,
		Message: constants.SaveSuccessMessage,
	}, nil
}

// History returns every stored entry, newest date first, reconciled.
func (s *Service) History(ctx context.Context) ([]models.Entry, error) {
	recs, err := s.store.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, entryFromRecord(rec))
	}
	return entries, nil
}

// Audit checks every stored row for legacy or malformed schedule data.
func (s *Service) Audit(ctx context.Context) (validation.ValidationResult, error) {
	recs, err := s.store.ListEntries(ctx)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to list entries: %w", err)
	}
	return validation.New().ValidateRecords(recs), nil
}

// HealReport lists the dates Heal rewrote, or would rewrite on a dry run.
type HealReport struct {
	Audit  validation.ValidationResult
	Dates  []string
	DryRun bool
}

// Heal rewrites every healable entry in structured form. Each rewrite is the
// same load-then-save a user would do, so the stored text fields are kept.
func (s *Service) Heal(ctx context.Context, dryRun bool) (HealReport, error) {
	audit, err := s.Audit(ctx)
	if err != nil {
		return HealReport{}, err
	}

	report := HealReport{Audit: audit, DryRun: dryRun}
	for _, date := range audit.HealableDates() {
		if dryRun {
			report.Dates = append(report.Dates, date)
			continue
		}

		entry, err := s.Load(ctx, date)
		if err != nil {
			return report, err
		}
		if _, err := s.Save(ctx, entry); err != nil {
			return report, err
		}
		logger.Info("Rewrote entry in structured form", "date", date)
		report.Dates = append(report.Dates, date)
	}
	return report, nil
}
