package input

import (
	"context"

	"smart-apply/internal/domain/entity"
)

// Applicable drives one application attempt to a terminal outcome. It never returns without one.
type Applicable interface {
	Apply(ctx context.Context, jobURL, resumePath string) entity.Outcome
}
