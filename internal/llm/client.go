package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shivansh-labs/namegate/internal/analyser"
	"github.com/shivansh-labs/namegate/internal/model"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	// maxAttempts bounds the model calls per request: one on the fast
	// model, one retry on the smart model.
	maxAttempts = 2

	// The model is instructed to produce between 3 and 7 suggestions;
	// output outside those bounds is rejected so the retry ladder runs.
	minSuggestions = 3
	maxSuggestions = 7

	temperature = 0.7
)

// Config carries the client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	ModelFast  string
	ModelSmart string
	Timeout    time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint and
// implements analyser.Adviser.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// New builds a client. An empty API key is allowed; Advise then skips
// the network entirely and serves fallback suggestions.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// structuredResponse is the JSON shape the model is instructed to emit.
type structuredResponse struct {
	SummarizedConflicts []string           `json:"summarized_conflicts"`
	RecommendedNames    []model.Suggestion `json:"recommended_names"`
}

// Advise summarizes the blocking conflicts and proposes alternatives.
// It never returns an error for upstream model failures; those degrade
// to deterministic fallback suggestions.
func (c *Client) Advise(ctx context.Context, ac analyser.Context, blockingMessages []string) (analyser.Advice, error) {
	if c.cfg.APIKey == "" {
		c.logger.Warn("no API key configured, serving fallback suggestions")
		return analyser.Advice{
			SummarizedConflicts: []string{"Could not connect to the analysis service."},
			RecommendedNames:    FallbackSuggestions(ac.BaseName),
		}, nil
	}

	prompt := userPrompt(ac, blockingMessages)
	mdl := c.cfg.ModelFast

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.logger.Info("requesting name analysis", "model", mdl, "attempt", attempt)

		parsed, err := c.complete(ctx, mdl, prompt)
		if err == nil {
			c.logger.Info("analysis generated",
				"model", mdl, "suggestions", len(parsed.RecommendedNames))
			return analyser.Advice{
				SummarizedConflicts: parsed.SummarizedConflicts,
				RecommendedNames:    parsed.RecommendedNames,
			}, nil
		}

		c.logger.Error("model call failed", "model", mdl, "attempt", attempt, "error", err)
		if ctx.Err() != nil {
			return analyser.Advice{}, ctx.Err()
		}
		mdl = c.cfg.ModelSmart
	}

	c.logger.Warn("all model attempts failed, serving fallback suggestions")
	return analyser.Advice{
		SummarizedConflicts: []string{"Analysis failed. Please check the raw error messages."},
		RecommendedNames:    FallbackSuggestions(ac.BaseName),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete performs one chat completion and parses the structured body.
func (c *Client) complete(ctx context.Context, mdl, prompt string) (*structuredResponse, error) {
	reqBody := chatRequest{
		Model: mdl,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("decoding completion response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("completion request failed: %s (%s)", cr.Error.Message, cr.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion request failed: HTTP %d", resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}

	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	// Models occasionally wrap the JSON in a markdown fence despite the
	// response format; strip it before parsing.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed structuredResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parsing structured model output: %w", err)
	}
	if n := len(parsed.RecommendedNames); n < minSuggestions || n > maxSuggestions {
		return nil, fmt.Errorf("model returned %d name suggestions, want %d to %d",
			n, minSuggestions, maxSuggestions)
	}
	return &parsed, nil
}
