package output

import (
	"context"

	"smart-apply/internal/domain/entity"
)

// ApplicationLedger durably records one row per attempt.
type ApplicationLedger interface {
	Record(ctx context.Context, attempt entity.ApplicationAttempt) error
	CountToday(ctx context.Context) (int, error)
	AggregateStats(ctx context.Context) (entity.Stats, error)
}

// UnfilledTracker replaces any earlier rows for the same job URL.
type UnfilledTracker interface {
	Append(ctx context.Context, records []entity.UnfilledFieldRecord, jobURL string) error
}

type DiagnosticsPort interface {
	Capture(ctx context.Context, page PagePort, name string, details ...string) (string, error)
}
