package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/timebox/internal/storage"
)

var dialect = storage.Dialect{
	SelectID:          "SELECT id FROM timeboxing_entry WHERE date = ?",
	Update:            "UPDATE timeboxing_entry SET top_priorities = ?, brain_dump = ?, schedule = ? WHERE id = ?",
	Insert:            "INSERT INTO timeboxing_entry (date, top_priorities, brain_dump, schedule) VALUES (?, ?, ?, ?) RETURNING id",
	IsUniqueViolation: isUniqueViolation,
	IsUnavailable:     isUnavailable,
}

const selectEntry = `
	SELECT id, date, COALESCE(top_priorities, ''), COALESCE(brain_dump, ''), schedule
	FROM timeboxing_entry`

func scanRecord(row interface{ Scan(...any) error }) (storage.Record, error) {
	var rec storage.Record
	var sched sql.NullString
	if err := row.Scan(&rec.ID, &rec.Date, &rec.TopPriorities, &rec.BrainDump, &sched); err != nil {
		return storage.Record{}, err
	}
	if sched.Valid {
		rec.Schedule = []byte(sched.String)
	}
	return rec, nil
}

func (s *Store) GetEntry(ctx context.Context, date string) (storage.Record, error) {
	db, err := s.conn()
	if err != nil {
		return storage.Record{}, err
	}
	rec, err := scanRecord(db.QueryRowContext(ctx, selectEntry+" WHERE date = ?", date))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, dialect.Classify(fmt.Errorf("failed to get entry %s: %w", date, err))
	}
	return rec, nil
}

func (s *Store) UpsertEntry(ctx context.Context, rec storage.Record) (storage.UpsertResult, error) {
	db, err := s.conn()
	if err != nil {
		return storage.UpsertResult{}, err
	}
	return storage.Upsert(ctx, db, dialect, rec)
}

func (s *Store) ListEntries(ctx context.Context) ([]storage.Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, selectEntry+" ORDER BY date DESC")
	if err != nil {
		return nil, dialect.Classify(fmt.Errorf("failed to list entries: %w", err))
	}
	defer rows.Close()

	var recs []storage.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
