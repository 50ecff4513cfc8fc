package session

import (
	"context"
	"fmt"
	"strings"

	"smart-apply/internal/domain/entity"
)

const (
	unknown        = "Unknown"
	maxDescription = 4000
)

// ExtractDetails opens url and reads the posting. Anything not found is left
// at its default ("Unknown" for title and company, empty otherwise); the
// error only reports that the page could not be opened.
func (c *Controller) ExtractDetails(ctx context.Context, url string) (entity.JobPosting, error) {
	job := entity.JobPosting{URL: url, Title: unknown, Company: unknown}

	if strings.TrimRight(c.Page.CurrentURL(), "/") != strings.TrimRight(url, "/") {
		if err := c.Page.Navigate(ctx, url); err != nil {
			return job, fmt.Errorf("open job: %w", err)
		}
		c.Sim.Delay(ctx, 1, 2)
	}

	if title, err := c.Resolver.Text(ctx, c.Catalog.JobTitle, c.Page); err == nil {
		job.Title = title
	} else {
		c.logger.Debug("Job title not found", "job_url", url)
	}
	if company, err := c.Resolver.Text(ctx, c.Catalog.Company, c.Page); err == nil {
		job.Company = company
	}
	if location, err := c.Resolver.Text(ctx, c.Catalog.Location, c.Page); err == nil {
		job.Location = location
	}
	if description, err := c.Resolver.Text(ctx, c.Catalog.Description, c.Page); err == nil {
		job.Description = truncateRunes(description, maxDescription)
	}
	return job, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
