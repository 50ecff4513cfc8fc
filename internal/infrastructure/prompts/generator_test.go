package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-apply/internal/domain/entity"
)

func TestGenerateResumeMatchPrompt(t *testing.T) {
	candidates := []entity.Resume{
		{ID: "frontend.pdf", Text: "React TypeScript CSS", WordCount: 3},
		{ID: "backend.pdf", Text: "Go PostgreSQL Kafka gRPC", WordCount: 4},
	}

	prompt, err := GenerateResumeMatchPrompt(ResumeMatchPrompt, "Go Developer", "Build services in Go.", candidates)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Job title: Go Developer")
	assert.Contains(t, prompt, "Build services in Go.")
	assert.Contains(t, prompt, "### backend.pdf (4 words)")
	assert.Contains(t, prompt, "Go PostgreSQL Kafka gRPC")
	assert.Contains(t, prompt, "selected_resume MUST be one of: backend.pdf, frontend.pdf")
	assert.Less(t, strings.Index(prompt, "backend.pdf"), strings.Index(prompt, "frontend.pdf"))
}

func TestGenerateResumeMatchPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	prompt, err := GenerateResumeMatchPrompt("{{ range .Resumes }}{{ .Excerpt }}{{ end }}|{{ len .Description }}", "t", strings.Repeat("d", 5000), []entity.Resume{
		{ID: "a.pdf", Text: long, WordCount: 1000},
	})
	require.NoError(t, err)

	parts := strings.Split(prompt, "|")
	require.Len(t, parts, 2)
	assert.Len(t, strings.Fields(parts[0]), 401)
	assert.True(t, strings.HasSuffix(parts[0], " ..."))
	assert.Equal(t, "4000", parts[1])
}

func TestGenerateResumeMatchPrompt_BadTemplate(t *testing.T) {
	_, err := GenerateResumeMatchPrompt("{{ .Nope ", "t", "d", nil)
	assert.Error(t, err)
}
