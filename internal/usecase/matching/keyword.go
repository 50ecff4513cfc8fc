package matching

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
)

var _ output.MatchSelector = (*KeywordSelector)(nil)

// KeywordSelector scores résumés by how many distinct posting words they mention.
// It is the selector used when no model is configured.
type KeywordSelector struct {
	logger output.LoggerPort
}

func NewKeywordSelector(logger output.LoggerPort) *KeywordSelector {
	return &KeywordSelector{logger: logger}
}

func (s *KeywordSelector) Select(ctx context.Context, description, titleFallback string, candidates []entity.Resume) (entity.ResumeMatch, error) {
	if len(candidates) == 0 {
		return entity.ResumeMatch{}, ErrNoCandidates
	}
	if strings.TrimSpace(description) == "" {
		description = titleFallback
	}

	wanted := terms(description)
	type scored struct {
		id    string
		score int
	}
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		have := terms(c.Text)
		hits := 0
		for t := range wanted {
			if _, ok := have[t]; ok {
				hits++
			}
		}
		score := 0
		if len(wanted) > 0 {
			score = hits * 100 / len(wanted)
		}
		results = append(results, scored{id: c.ID, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].id < results[j].id
	})

	best := results[0]
	confidence := 0.5
	if len(results) > 1 {
		gap := float64(best.score-results[1].score) / 100
		confidence = clamp(0.5+gap, 0, 1)
	}

	s.logger.Debug("Keyword resume match", "resume", best.id, "score", best.score)
	return entity.ResumeMatch{
		ResumeID:   best.id,
		Score:      best.score,
		Confidence: confidence,
		Reasoning:  "keyword overlap",
	}, nil
}

var stopWords = map[string]struct{}{
	"and": {}, "the": {}, "with": {}, "for": {}, "you": {}, "our": {}, "are": {},
	"will": {}, "have": {}, "your": {}, "this": {}, "that": {}, "from": {}, "who": {},
}

func terms(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	}) {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
