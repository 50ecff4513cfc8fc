package output

import (
	"context"

	"smart-apply/internal/domain/entity"
)

type ResumeStore interface {
	ListAvailable(ctx context.Context) ([]string, error)
	Path(ctx context.Context, id string) (string, error)
	AllWithMetadata(ctx context.Context) (map[string]entity.Resume, error)
}

type MatchSelector interface {
	Select(ctx context.Context, description, titleFallback string, candidates []entity.Resume) (entity.ResumeMatch, error)
}
