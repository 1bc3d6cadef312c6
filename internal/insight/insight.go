// Package insight asks an external text-generation service for a short
// natural-language summary of a call batch. The service is reached through an
// OpenAI-compatible chat-completions endpoint. All methods are context-aware,
// respect the shared rate limiter, and retry on transient errors (429, 5xx).
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avinashkr148/Call-analyzer/internal/model"
)

const (
	// MaxPromptRecords bounds how many records are sent to the service.
	MaxPromptRecords = 50

	// FailureMessage is shown in place of an insight when generation fails.
	FailureMessage = "Failed to generate AI insights."

	DefaultBaseURL    = "https://api.openai.com"
	DefaultModel      = "gpt-4o-mini"
	DefaultMaxRetries = 3

	preamble = "Analyze these call logs and provide a brief professional summary " +
		"(3-4 bullet points) of patterns like peak call times, frequent contacts, " +
		"or average call efficiency. Use Markdown."

	systemInstruction = "You are a senior telecommunications analyst. " +
		"Provide concise, data-driven insights based on the provided logs."
)

var (
	ErrNoRecords = errors.New("insight: no call records to analyze")
	ErrNoAPIKey  = errors.New("insight: API key not configured")
	ErrEmpty     = errors.New("insight: empty response")
)

// Generator produces insight text for a batch of records.
type Generator interface {
	Generate(ctx context.Context, records []model.CallRecord) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Rate       float64 // requests per second
	MaxRetries int
	Debug      bool
}

// Client is the chat-completions HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

// NewClient creates a Client. Zero-valued options fall back to defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Rate <= 0 {
		opts.Rate = 1
	}
	burst := int(opts.Rate)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		maxRetries: opts.MaxRetries,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.Rate), burst),
		debug:      opts.Debug,
	}
}

// ─── Prompt ───────────────────────────────────────────────────────────────────

// PromptLines renders at most MaxPromptRecords records, one line each.
func PromptLines(records []model.CallRecord) []string {
	if len(records) > MaxPromptRecords {
		records = records[:MaxPromptRecords]
	}
	lines := make([]string, len(records))
	for i, c := range records {
		lines[i] = fmt.Sprintf("Num: %s, Time: %s, Dur: %s", c.Number, c.Timestamp, c.DurationFormatted)
	}
	return lines
}

// BuildPrompt returns the user prompt: the fixed preamble, a blank line, then
// the record lines.
func BuildPrompt(records []model.CallRecord) string {
	return preamble + "\n\n" + strings.Join(PromptLines(records), "\n")
}

// ─── Generate ─────────────────────────────────────────────────────────────────

// Generate asks the service for an insight over records.
func (c *Client) Generate(ctx context.Context, records []model.CallRecord) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRecords
	}
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	payload := map[string]any{
		"model":       c.model,
		"temperature": 0.2,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": BuildPrompt(records)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	var wrapper struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/v1/chat/completions", body, &wrapper); err != nil {
		return "", fmt.Errorf("insight: %w", err)
	}
	if len(wrapper.Choices) == 0 {
		return "", ErrEmpty
	}
	text := strings.TrimSpace(wrapper.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Describe runs g and maps any failure to FailureMessage. It reports false
// only when there was nothing to describe.
func Describe(ctx context.Context, g Generator, records []model.CallRecord) (string, bool) {
	if len(records) == 0 {
		return "", false
	}
	text, err := g.Generate(ctx, records)
	if err != nil {
		slog.Warn("insight generation failed", "err", err)
		return FailureMessage, true
	}
	return text, true
}

// ─── Low-level HTTP ───────────────────────────────────────────────────────────

// post sends a JSON body to endpoint, handling rate limiting and retries.
func (c *Client) post(ctx context.Context, endpoint string, body []byte, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + endpoint
	if c.debug {
		slog.Debug("insight request", "url", reqURL, "model", c.model, "bytes", len(body))
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))*500) * time.Millisecond
			slog.Debug("retrying after backoff", "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "callan-cli/1.0")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reading body: %w", err)
			continue
		}

		if c.debug {
			slog.Debug("insight response", "status", resp.StatusCode, "bytes", len(respBody))
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr struct {
				Error struct {
					Message string `json:"message"`
				} `json:"error"`
			}
			_ = json.Unmarshal(respBody, &apiErr)
			if apiErr.Error.Message != "" {
				return fmt.Errorf("API error: %s", apiErr.Error.Message)
			}
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr)
}
