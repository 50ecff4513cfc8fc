package input

import (
	"context"

	"smart-apply/internal/domain/entity"
)

type SessionRunner interface {
	Run(ctx context.Context) (*entity.SessionSummary, error)
}
