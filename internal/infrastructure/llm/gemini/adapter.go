package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
	"smart-apply/internal/usecase/timing"

	"google.golang.org/genai"
)

var _ output.LLMPort = (*Adapter)(nil)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultMaxRetries = 3
	retryBaseDelay    = 2 * time.Second
)

var ErrEmptyResponse = errors.New("gemini api returned empty response")

// contentGenerator is the subset of genai.Models the adapter calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Adapter struct {
	models     contentGenerator
	model      string
	maxRetries int
	clock      timing.Clock
	logger     output.LoggerPort
}

type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
}

func NewAdapter(ctx context.Context, cfg Config, clock timing.Clock, logger output.LoggerPort) (*Adapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newAdapter(client.Models, cfg, clock, logger), nil
}

func newAdapter(models contentGenerator, cfg Config, clock timing.Clock, logger output.LoggerPort) *Adapter {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	if clock == nil {
		clock = timing.RealClock()
	}
	return &Adapter{
		models:     models,
		model:      model,
		maxRetries: retries,
		clock:      clock,
		logger:     logger,
	}
}

func (a *Adapter) Model() string {
	return a.model
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	contents, config := convertRequest(req)
	if len(contents) == 0 {
		return nil, errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		resp, err := a.models.GenerateContent(ctx, a.model, contents, config)
		if err == nil {
			text := responseText(resp)
			if text == "" {
				return nil, ErrEmptyResponse
			}
			return &output.ChatResponse{
				Message: entity.Message{Role: entity.RoleAssistant, Content: text},
			}, nil
		}

		lastErr = err
		if !temporary(err) || attempt == a.maxRetries {
			break
		}

		delay := retryBaseDelay * time.Duration(attempt)
		a.logger.Warn("Gemini request failed, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err)
		if err := a.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("generate content: %w", lastErr)
}

func convertRequest(req output.ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case entity.RoleSystem:
			system = append(system, msg.Content)
		case entity.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, config
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// first usable candidate only
		if builder.Len() > 0 {
			break
		}
	}
	return builder.String()
}

// temporary reports server-side failures and short rate limits worth another try.
func temporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code >= http.StatusInternalServerError {
		return true
	}
	if apiErr.Code == http.StatusTooManyRequests {
		// daily quota exhaustion will not clear within a retry window
		return !strings.Contains(strings.ToLower(apiErr.Message), "quota")
	}
	return false
}
