package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/timing"

	"github.com/google/uuid"
)

var _ output.ApplicationLedger = (*Ledger)(nil)

const dayLayout = "2006-01-02"

// Ledger stores one row per application attempt.
type Ledger struct {
	db    *sql.DB
	clock timing.Clock
	loc   *time.Location
}

func NewLedger(db *sql.DB, clock timing.Clock) *Ledger {
	if clock == nil {
		clock = timing.RealClock()
	}
	return &Ledger{db: db, clock: clock, loc: time.Local}
}

// InLocation sets the zone that decides which calendar day an attempt belongs to.
func (l *Ledger) InLocation(loc *time.Location) *Ledger {
	l.loc = loc
	return l
}

func (l *Ledger) day(t time.Time) string {
	return t.In(l.loc).Format(dayLayout)
}

func (l *Ledger) Record(ctx context.Context, a entity.ApplicationAttempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.FinishedAt.IsZero() {
		a.FinishedAt = l.clock.Now()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = a.FinishedAt
	}

	return runTx(ctx, l.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO applications
				(id, day, started_at, finished_at, title, company, location, resume, score, confidence, status, reason, url, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID,
			l.day(a.StartedAt),
			a.StartedAt.UTC().Format(time.RFC3339),
			a.FinishedAt.UTC().Format(time.RFC3339),
			a.Job.Title,
			a.Job.Company,
			a.Job.Location,
			a.ResumeID,
			a.Score,
			a.Confidence,
			string(a.Outcome.Status),
			a.Outcome.Reason,
			a.Job.URL,
			a.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert application: %w", err)
		}
		return nil
	})
}

// CountToday counts every attempt started today, whatever its outcome.
func (l *Ledger) CountToday(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM applications WHERE day = ?`, l.day(l.clock.Now()),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	return n, nil
}

func (l *Ledger) AggregateStats(ctx context.Context) (entity.Stats, error) {
	stats := entity.Stats{ByResume: make(map[string]int)}

	err := l.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(status IN (?, ?)), 0),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(day = ?), 0)
		FROM applications`,
		string(entity.StatusSuccess),
		string(entity.StatusFailed), string(entity.StatusError),
		string(entity.StatusSkipped),
		l.day(l.clock.Now()),
	).Scan(&stats.Total, &stats.Success, &stats.Failed, &stats.Skipped, &stats.Today)
	if err != nil {
		return stats, fmt.Errorf("aggregate stats: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, `SELECT resume, COUNT(*) FROM applications GROUP BY resume`)
	if err != nil {
		return stats, fmt.Errorf("stats by resume: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resume string
		var n int
		if err := rows.Scan(&resume, &n); err != nil {
			return stats, err
		}
		stats.ByResume[resume] = n
	}
	return stats, rows.Err()
}
