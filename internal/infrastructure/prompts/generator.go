package prompts

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"smart-apply/internal/domain/entity"
)

const (
	maxExcerptWords     = 400
	maxDescriptionRunes = 4000
)

type ResumeInfo struct {
	ID        string
	WordCount int
	Excerpt   string
}

type ResumeMatchPromptData struct {
	Title       string
	Description string
	Resumes     []ResumeInfo
}

// GenerateResumeMatchPrompt renders baseTemplate for one job and its résumé candidates.
func GenerateResumeMatchPrompt(baseTemplate, title, description string, candidates []entity.Resume) (string, error) {
	infos := make([]ResumeInfo, 0, len(candidates))
	for _, r := range candidates {
		infos = append(infos, ResumeInfo{
			ID:        r.ID,
			WordCount: r.WordCount,
			Excerpt:   excerpt(r.Text, maxExcerptWords),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})

	if r := []rune(description); len(r) > maxDescriptionRunes {
		description = string(r[:maxDescriptionRunes])
	}

	data := ResumeMatchPromptData{
		Title:       title,
		Description: strings.TrimSpace(description),
		Resumes:     infos,
	}

	tmpl, err := template.New("resume_match").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func excerpt(text string, words int) string {
	fields := strings.Fields(text)
	if len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + " ..."
}
