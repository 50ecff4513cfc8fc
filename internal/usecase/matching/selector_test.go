package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/infrastructure/logger"
)

type stubLLM struct {
	reply string
	err   error
	reqs  []output.ChatRequest
}

func (s *stubLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: s.reply}}, nil
}

var candidates = []entity.Resume{
	{ID: "backend.pdf", Text: "Go Kafka PostgreSQL Kubernetes", WordCount: 4},
	{ID: "frontend.pdf", Text: "React TypeScript Next.js", WordCount: 3},
}

func TestLLMSelector_Select(t *testing.T) {
	llm := &stubLLM{reply: "Sure! Here you go:\n" + `{"selected_resume": "backend.pdf", "match_score": 87, "confidence": 0.82, "reasoning": "Go and Kafka"}`}
	s := NewLLMSelector(llm, logger.NewNop())

	match, err := s.Select(context.Background(), "Build Go services on Kafka", "Go Developer", candidates)

	require.NoError(t, err)
	assert.Equal(t, entity.ResumeMatch{ResumeID: "backend.pdf", Score: 87, Confidence: 0.82, Reasoning: "Go and Kafka"}, match)

	require.Len(t, llm.reqs, 1)
	req := llm.reqs[0]
	assert.True(t, req.JSON)
	assert.Equal(t, entity.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Build Go services on Kafka")
	assert.Contains(t, req.Messages[0].Content, "frontend.pdf")
}

func TestLLMSelector_TitleFallback(t *testing.T) {
	llm := &stubLLM{reply: `{"selected_resume": "frontend.pdf", "match_score": 50, "confidence": 0.5}`}
	s := NewLLMSelector(llm, logger.NewNop())

	_, err := s.Select(context.Background(), "  ", "React Intern", candidates)

	require.NoError(t, err)
	assert.Contains(t, llm.reqs[0].Messages[0].Content, "Job description:\nReact Intern")
}

func TestLLMSelector_NormalizesAnswer(t *testing.T) {
	llm := &stubLLM{reply: `{"selected_resume": "Frontend", "match_score": 140, "confidence": 1.7}`}
	s := NewLLMSelector(llm, logger.NewNop())

	match, err := s.Select(context.Background(), "UI work", "React", candidates)

	require.NoError(t, err)
	assert.Equal(t, "frontend.pdf", match.ResumeID)
	assert.Equal(t, 100, match.Score)
	assert.Equal(t, 1.0, match.Confidence)
}

func TestLLMSelector_Errors(t *testing.T) {
	tests := []struct {
		name  string
		llm   *stubLLM
		cands []entity.Resume
		msg   string
	}{
		{name: "no candidates", llm: &stubLLM{}, msg: "no resume candidates"},
		{name: "llm down", llm: &stubLLM{err: errors.New("502")}, cands: candidates, msg: "match llm request failed"},
		{name: "no json", llm: &stubLLM{reply: "I think backend"}, cands: candidates, msg: "no JSON found"},
		{name: "broken json", llm: &stubLLM{reply: `{"selected_resume": }`}, cands: candidates, msg: "failed to parse JSON"},
		{name: "unknown id", llm: &stubLLM{reply: `{"selected_resume": "devops.pdf"}`}, cands: candidates, msg: "unknown resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLLMSelector(tt.llm, logger.NewNop())
			_, err := s.Select(context.Background(), "desc", "title", tt.cands)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestKeywordSelector(t *testing.T) {
	s := NewKeywordSelector(logger.NewNop())

	match, err := s.Select(context.Background(), "Senior engineer: Go, Kafka and PostgreSQL", "Go Developer", candidates)

	require.NoError(t, err)
	assert.Equal(t, "backend.pdf", match.ResumeID)
	assert.Greater(t, match.Score, 0)
	assert.Greater(t, match.Confidence, 0.5)
}

func TestKeywordSelector_TieBreaksByID(t *testing.T) {
	s := NewKeywordSelector(logger.NewNop())

	match, err := s.Select(context.Background(), "", "Accountant", candidates)

	require.NoError(t, err)
	assert.Equal(t, "backend.pdf", match.ResumeID)
	assert.Equal(t, 0, match.Score)
	assert.Equal(t, 0.5, match.Confidence)
}

func TestKeywordSelector_NoCandidates(t *testing.T) {
	_, err := NewKeywordSelector(logger.NewNop()).Select(context.Background(), "x", "y", nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}
