package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect carries the driver specific statements and error classifiers used by
// the shared entry upsert.
type Dialect struct {
	// SelectID takes the date and returns the id of the existing row.
	SelectID string
	// Update takes top_priorities, brain_dump, schedule and id.
	Update string
	// Insert takes date, top_priorities, brain_dump, schedule and returns id.
	Insert string

	IsUniqueViolation func(error) bool
	IsUnavailable     func(error) bool
}

// Classify wraps connectivity failures with ErrUnavailable and leaves every
// other error as is.
func (d Dialect) Classify(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	if d.IsUnavailable != nil && d.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// Upsert writes rec keyed by its date inside a single transaction: the row is
// updated when the date exists and inserted otherwise. An insert that loses a
// race to a concurrent writer is retried once as an update in a fresh
// transaction. On any error the transaction is rolled back and nothing is
// persisted.
func Upsert(ctx context.Context, db *sql.DB, d Dialect, rec Record) (UpsertResult, error) {
	res, err := upsertTx(ctx, db, d, rec)
	if err == nil {
		return res, nil
	}
	if d.IsUniqueViolation == nil || !d.IsUniqueViolation(err) {
		return UpsertResult{}, d.Classify(err)
	}

	res, err = upsertTx(ctx, db, d, rec)
	if err != nil {
		return UpsertResult{}, d.Classify(err)
	}
	res.Retried = true
	return res, nil
}

func upsertTx(ctx context.Context, db *sql.DB, d Dialect, rec Record) (UpsertResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, d.SelectID, rec.Date).Scan(&id)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx, d.Update, rec.TopPriorities, rec.BrainDump, string(rec.Schedule), id); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to update entry %s: %w", rec.Date, err)
		}
		if err := tx.Commit(); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to commit entry %s: %w", rec.Date, err)
		}
		return UpsertResult{ID: id}, nil

	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, d.Insert, rec.Date, rec.TopPriorities, rec.BrainDump, string(rec.Schedule)).Scan(&id); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to insert entry %s: %w", rec.Date, err)
		}
		if err := tx.Commit(); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to commit entry %s: %w", rec.Date, err)
		}
		return UpsertResult{ID: id, Created: true}, nil

	default:
		return UpsertResult{}, fmt.Errorf("failed to look up entry %s: %w", rec.Date, err)
	}
}
