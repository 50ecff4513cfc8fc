package output

import (
	"context"

	"smart-apply/internal/domain/entity"
)

type UserInteractionPort interface {
	Confirm(ctx context.Context, question string) (bool, error)

	ShowJob(ctx context.Context, index, total int, job entity.JobPosting)
	ShowResumeChoice(ctx context.Context, match entity.ResumeMatch)
	ShowOutcome(ctx context.Context, attempt entity.ApplicationAttempt)
	ShowSummary(ctx context.Context, summary *entity.SessionSummary, stats entity.Stats)
}
