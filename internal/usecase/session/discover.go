package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"smart-apply/internal/domain/entity"
)

const jobViewPath = "/jobs/view/"

// SearchURL builds the Easy Apply filtered search for one query and location.
func (c *Controller) SearchURL(query, location string) string {
	v := url.Values{}
	v.Set("keywords", query)
	if location != "" {
		v.Set("location", location)
	}
	v.Set("f_AL", "true")
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/jobs/search/?" + v.Encode()
}

// Discover collects job URLs for every query and location pair, de-duplicated in
// first-seen order. On an empty result it saves a snapshot and, when a person is
// watching the browser, offers to retry after they fix the page.
func (c *Controller) Discover(ctx context.Context) ([]string, error) {
	for {
		urls, err := c.discoverOnce(ctx)
		if err != nil {
			return nil, err
		}
		if len(urls) > 0 {
			return urls, nil
		}

		c.logger.Warn("No job URLs found")
		if _, err := c.Diag.Capture(context.WithoutCancel(ctx), c.Page, "no_jobs", "queries: "+strings.Join(c.cfg.SearchQueries, ", ")); err != nil {
			c.logger.Warn("Failed to save no_jobs snapshot", "error", err)
		}
		if c.cfg.Headless {
			return nil, nil
		}

		retry, err := c.UI.Confirm(ctx, "No jobs found. Log in or fix the page in the browser, then retry?")
		if err != nil || !retry {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, nil
		}
		c.logger.Info("Retrying discovery after manual action")
	}
}

func (c *Controller) discoverOnce(ctx context.Context) ([]string, error) {
	locations := c.cfg.Locations
	if len(locations) == 0 {
		locations = []string{""}
	}

	seen := make(map[string]bool)
	var all []string
	for _, query := range c.cfg.SearchQueries {
		for _, location := range locations {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			found, err := c.searchOnce(ctx, query, location)
			if err != nil {
				if entity.IsFatal(err) || entity.IsCanceled(err) {
					return nil, err
				}
				c.logger.Warn("Search failed", "query", query, "location", location, "error", err)
				continue
			}

			added := 0
			for _, u := range found {
				if !seen[u] {
					seen[u] = true
					all = append(all, u)
					added++
				}
			}
			c.logger.Info("Search done", "query", query, "location", location, "found", len(found), "new", added)
		}
	}
	return all, nil
}

func (c *Controller) searchOnce(ctx context.Context, query, location string) ([]string, error) {
	search := c.SearchURL(query, location)
	if err := c.Page.Navigate(ctx, search); err != nil {
		return nil, fmt.Errorf("open search: %w", err)
	}
	c.Sim.Delay(ctx, 1, 2)

	for range c.cfg.ScrollPasses {
		c.Sim.Scroll(ctx, c.Page)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.collectLinks(ctx), nil
}

// collectLinks walks every job-link candidate in chain order, up to MaxJobsPerQuery unique URLs.
func (c *Controller) collectLinks(ctx context.Context) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, sel := range c.Catalog.JobLink {
		els, err := c.Page.QueryAll(ctx, sel)
		if err != nil {
			c.logger.Debug("Job link query failed", "selector", sel, "error", err)
			continue
		}
		for _, el := range els {
			href, ok, err := el.Attribute(ctx, "href")
			if err != nil || !ok {
				continue
			}
			u, ok := c.normalizeJobURL(href)
			if !ok || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
			if len(urls) >= c.cfg.MaxJobsPerQuery {
				return urls
			}
		}
	}
	return urls
}

// normalizeJobURL drops query and fragment and resolves relative links against BaseURL.
func (c *Controller) normalizeJobURL(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	u := base.ResolveReference(ref)
	u.RawQuery = ""
	u.Fragment = ""
	if !strings.Contains(u.Path, jobViewPath) {
		return "", false
	}
	return u.String(), true
}
