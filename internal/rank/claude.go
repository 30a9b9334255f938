package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/docmark/internal/chunker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.anthropic.com"

// ClaudeConfig tunes the Claude scorer.
type ClaudeConfig struct {
	BaseURL       string         // API root; defaults to the public endpoint.
	Chunk         chunker.Config // Sentence splitting and batch budget.
	MaxConcurrent int            // Parallel batch requests per Score call.
	RatePerSecond float64        // Request rate across all calls; 0 disables.
}

// ClaudeScorer calls the Anthropic Messages API to score sentences.
type ClaudeScorer struct {
	apiKey     string
	model      string
	cfg        ClaudeConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	stats      *LLMStats
	log        *slog.Logger
}

func NewClaudeScorer(apiKey, model string, cfg ClaudeConfig, stats *LLMStats, log *slog.Logger) *ClaudeScorer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if log == nil {
		log = slog.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return &ClaudeScorer{
		apiKey: apiKey,
		model:  model,
		cfg:    cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: limiter,
		stats:   stats,
		log:     log,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Score splits text into sentences, scores them in batches and returns one
// entry per sentence.
func (c *ClaudeScorer) Score(ctx context.Context, text string) ([]Scored, error) {
	sentences := chunker.Sentences(text, c.cfg.Chunk)
	if len(sentences) == 0 {
		return []Scored{}, nil
	}
	batches := chunker.BatchSentences(sentences, c.cfg.Chunk)

	importance := make([]float64, len(sentences))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrent)
	for _, b := range batches {
		g.Go(func() error {
			scores, err := c.scoreWithRetry(gctx, b)
			if err != nil {
				return fmt.Errorf("batch %d: %w", b.Index, err)
			}
			// Batches cover disjoint index ranges.
			copy(importance[b.Offset:], scores)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Scored, len(sentences))
	for i, s := range sentences {
		out[i] = Scored{Index: i, Text: s, Importance: importance[i]}
	}
	c.log.Debug("scored sentences", "sentences", len(sentences), "batches", len(batches))
	return out, nil
}

func (c *ClaudeScorer) scoreWithRetry(ctx context.Context, b chunker.Batch) ([]float64, error) {
	prompt := buildBatchPrompt(b.Sentences)
	var scores []float64
	var lastErr error
	for attempt := range MaxRetries {
		scores, lastErr = c.scoreBatch(ctx, prompt, len(b.Sentences))
		if lastErr == nil || !IsRetryable(lastErr) || attempt == MaxRetries-1 {
			break
		}
		c.log.Warn("retryable scoring error", "batch", b.Index, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return scores, lastErr
}

func (c *ClaudeScorer) scoreBatch(ctx context.Context, prompt string, n int) ([]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if c.stats != nil {
		c.stats.Record(time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("claude api status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return nil, fmt.Errorf("empty response from claude")
	}

	text := stripCodeBlock(apiResp.Content[0].Text)

	var raw []batchScore
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse scores json: %w (raw: %s)", err, truncate(text, 200))
	}
	return validateScores(raw, n), nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// Close releases resources.
func (c *ClaudeScorer) Close() {
	c.httpClient.CloseIdleConnections()
}
