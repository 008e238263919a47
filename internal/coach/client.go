package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"google.golang.org/genai"

	"github.com/pathforge/coach-backend/internal/shared"
)

const (
	defaultModel = "models/gemini-2.5-flash"
	maxAttempts  = 3
	baseDelay    = 500 * time.Millisecond
)

// Client generates structured coaching content. Every call declares its JSON
// output shape so responses parse without prompt acrobatics.
type Client struct {
	client *genai.Client
	model  string
	log    *slog.Logger
	sleep  func(time.Duration)
}

type ClientConfig struct {
	APIKey string
	Model  string
	Log    *slog.Logger
}

func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("coach: api key required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("coach: create client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.Model,
		log:    cfg.Log.With("component", "coach"),
		sleep:  time.Sleep,
	}, nil
}

// generateJSON runs one structured generation, retrying transient upstream
// failures with doubling delays up to the attempt cap.
func (c *Client) generateJSON(ctx context.Context, system, prompt string, schema *genai.Schema, out any) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
		if err == nil {
			text := result.Text()
			if text == "" {
				return errors.New("coach: empty model response")
			}
			return sonic.UnmarshalString(text, out)
		}

		lastErr = err
		if !retryable(err) || attempt == maxAttempts {
			break
		}

		c.log.Warn("generation failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.sleep(delay)
		delay *= 2
	}

	if retryable(lastErr) {
		return shared.ErrRateLimited
	}
	return fmt.Errorf("coach: generation failed: %w", lastErr)
}

func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 503:
			return true
		}
	}
	return false
}
