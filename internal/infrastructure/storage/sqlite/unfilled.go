package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/timing"
)

var _ output.UnfilledTracker = (*UnfilledTracker)(nil)

type UnfilledTracker struct {
	db    *sql.DB
	clock timing.Clock
}

func NewUnfilledTracker(db *sql.DB, clock timing.Clock) *UnfilledTracker {
	if clock == nil {
		clock = timing.RealClock()
	}
	return &UnfilledTracker{db: db, clock: clock}
}

// Append replaces every earlier row for jobURL with records; duplicates within records collapse.
func (t *UnfilledTracker) Append(ctx context.Context, records []entity.UnfilledFieldRecord, jobURL string) error {
	if len(records) == 0 {
		return nil
	}
	now := t.clock.Now().UTC().Format(time.RFC3339)

	return runTx(ctx, t.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM unfilled_fields WHERE job_url = ?`, jobURL); err != nil {
			return fmt.Errorf("clear unfilled: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO unfilled_fields (job_url, kind, label, suggestion, recorded_at)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range records {
			if r.Label == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, jobURL, string(r.Kind), r.Label, r.Suggestion, now); err != nil {
				return fmt.Errorf("insert unfilled %q: %w", r.Label, err)
			}
		}
		return nil
	})
}

// UnfilledRow is one stored question with where it was seen.
type UnfilledRow struct {
	entity.UnfilledFieldRecord
	JobURL     string
	RecordedAt time.Time
}

// Recent returns the newest rows first.
func (t *UnfilledTracker) Recent(ctx context.Context, limit int) ([]UnfilledRow, error) {
	rows, err := t.db.QueryContext(ctx, `
		SELECT job_url, kind, label, suggestion, recorded_at
		FROM unfilled_fields
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unfilled: %w", err)
	}
	defer rows.Close()

	var out []UnfilledRow
	for rows.Next() {
		var (
			row  UnfilledRow
			kind string
			at   string
		)
		if err := rows.Scan(&row.JobURL, &kind, &row.Label, &row.Suggestion, &at); err != nil {
			return nil, err
		}
		row.Kind = entity.FieldKind(kind)
		row.RecordedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, row)
	}
	return out, rows.Err()
}
