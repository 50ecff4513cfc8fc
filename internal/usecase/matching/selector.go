package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/infrastructure/prompts"
)

var _ output.MatchSelector = (*LLMSelector)(nil)

var ErrNoCandidates = errors.New("no resume candidates")

// LLMSelector asks a language model which résumé fits a posting best.
type LLMSelector struct {
	llm      output.LLMPort
	template string
	logger   output.LoggerPort
}

func NewLLMSelector(llm output.LLMPort, logger output.LoggerPort) *LLMSelector {
	return &LLMSelector{
		llm:      llm,
		template: prompts.ResumeMatchPrompt,
		logger:   logger,
	}
}

type matchResponse struct {
	SelectedResume string  `json:"selected_resume"`
	MatchScore     float64 `json:"match_score"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

func (s *LLMSelector) Select(ctx context.Context, description, titleFallback string, candidates []entity.Resume) (entity.ResumeMatch, error) {
	if len(candidates) == 0 {
		return entity.ResumeMatch{}, ErrNoCandidates
	}
	if strings.TrimSpace(description) == "" {
		description = titleFallback
	}

	prompt, err := prompts.GenerateResumeMatchPrompt(s.template, titleFallback, description, candidates)
	if err != nil {
		return entity.ResumeMatch{}, fmt.Errorf("failed to render match prompt: %w", err)
	}

	resp, err := s.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: prompt},
			{Role: entity.RoleUser, Content: fmt.Sprintf("Choose the résumé for: %s", titleFallback)},
		},
		Temperature: 0.0,
		JSON:        true,
	})
	if err != nil {
		return entity.ResumeMatch{}, fmt.Errorf("match llm request failed: %w", err)
	}

	parsed, err := parseMatchResponse(resp.Message.Content)
	if err != nil {
		return entity.ResumeMatch{}, err
	}

	id, ok := resolveID(parsed.SelectedResume, candidates)
	if !ok {
		return entity.ResumeMatch{}, fmt.Errorf("model selected unknown resume %q", parsed.SelectedResume)
	}

	match := entity.ResumeMatch{
		ResumeID:   id,
		Score:      int(clamp(parsed.MatchScore, 0, 100)),
		Confidence: clamp(parsed.Confidence, 0, 1),
		Reasoning:  parsed.Reasoning,
	}

	s.logger.Info("Resume matched",
		"resume", match.ResumeID,
		"score", match.Score,
		"confidence", match.Confidence,
	)
	return match, nil
}

func parseMatchResponse(response string) (*matchResponse, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")

	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var result matchResponse
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &result, nil
}

// resolveID accepts the exact id, or a case-insensitive match with or without the .pdf suffix.
func resolveID(selected string, candidates []entity.Resume) (string, bool) {
	selected = strings.TrimSpace(selected)
	for _, c := range candidates {
		if c.ID == selected {
			return c.ID, true
		}
	}
	want := strings.TrimSuffix(strings.ToLower(selected), ".pdf")
	for _, c := range candidates {
		if strings.TrimSuffix(strings.ToLower(c.ID), ".pdf") == want {
			return c.ID, true
		}
	}
	return "", false
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
