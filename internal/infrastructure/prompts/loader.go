package prompts

import (
	_ "embed"
)

//go:embed resume_match.txt
var ResumeMatchPrompt string
