package session

import (
	"context"
	"fmt"
	"slices"

	"smart-apply/internal/domain/entity"
)

// ChooseResume picks the résumé for job and returns its upload path.
//
// A single résumé is used as-is (score 0, confidence 1) without asking the
// selector. When the selector fails or names an unknown résumé, the first
// available one is used with zero confidence.
func (c *Controller) ChooseResume(ctx context.Context, job entity.JobPosting) (entity.ResumeMatch, string, error) {
	ids, err := c.Resumes.ListAvailable(ctx)
	if err != nil {
		return entity.ResumeMatch{}, "", fmt.Errorf("list resumes: %w", err)
	}
	if len(ids) == 0 {
		return entity.ResumeMatch{}, "", errNoResumes
	}

	match := entity.ResumeMatch{ResumeID: ids[0], Confidence: 1.0}
	if len(ids) > 1 {
		match = c.selectResume(ctx, job, ids)
	}

	path, err := c.Resumes.Path(ctx, match.ResumeID)
	if err != nil {
		return entity.ResumeMatch{}, "", fmt.Errorf("resume path: %w", err)
	}
	return match, path, nil
}

func (c *Controller) selectResume(ctx context.Context, job entity.JobPosting, ids []string) entity.ResumeMatch {
	fallback := entity.ResumeMatch{ResumeID: ids[0], Reasoning: "fallback: first available resume"}

	all, err := c.Resumes.AllWithMetadata(ctx)
	if err != nil {
		c.logger.Warn("Failed to load resume metadata", "error", err)
		return fallback
	}
	candidates := make([]entity.Resume, 0, len(ids))
	for _, id := range ids {
		if r, ok := all[id]; ok {
			candidates = append(candidates, r)
		}
	}

	match, err := c.Matcher.Select(ctx, job.Description, job.Title, candidates)
	if err != nil {
		c.logger.Warn("Resume selection failed, using fallback", "error", err, "fallback", fallback.ResumeID)
		return fallback
	}
	if !slices.Contains(ids, match.ResumeID) {
		c.logger.Warn("Selector chose an unknown resume", "resume", match.ResumeID)
		return fallback
	}

	c.logger.Info("Resume matched",
		"resume", match.ResumeID,
		"score", match.Score,
		"confidence", match.Confidence)
	return match
}
