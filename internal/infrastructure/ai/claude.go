package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/config"
)

const (
	defaultAnthropicURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
)

// Short aliases accepted by the routing table.
var claudeModels = map[string]string{
	"haiku":  "claude-3-5-haiku-20241022",
	"sonnet": "claude-3-5-sonnet-20241022",
	"opus":   "claude-3-opus-20240229",
}

// Pricing per 1M tokens in USD, keyed by resolved model name.
var claudePrices = map[string]struct{ input, output float64 }{
	"claude-3-5-haiku-20241022":  {0.80, 4.00},
	"claude-3-5-sonnet-20241022": {3.00, 15.00},
	"claude-3-opus-20240229":     {15.00, 75.00},
}

// Claude covers editorial review, premium content and the universal
// fallback tier via the Anthropic messages API.
type Claude struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

var _ ai.Provider = (*Claude)(nil)

// NewClaude builds a client for the given model, resolving short aliases
// (haiku, sonnet, opus) to full model names.
func NewClaude(cfg config.ClaudeConfig, model string, log *slog.Logger) *Claude {
	if full, ok := claudeModels[model]; ok {
		model = full
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultAnthropicURL
	}
	return &Claude{
		endpoint: endpoint,
		model:    model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log.With("component", "claude"),
	}
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Claude) Generate(ctx context.Context, prompt, system string, maxTokens int, temperature float64) ai.Response {
	body, err := json.Marshal(claudeRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      system,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return c.failure(fmt.Sprintf("marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.failure(fmt.Sprintf("new request: %v", err))
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed", "model", c.model, "error", err)
		return c.failure(err.Error())
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return c.failure(fmt.Sprintf("read response: %v", err))
	}

	var parsed claudeResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return c.failure(fmt.Sprintf("decode response %s: %v", resp.Status, err))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := resp.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		c.log.Error("api error", "model", c.model, "status", resp.Status, "error", msg)
		return c.failure(msg)
	}

	var content strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	cost := c.cost(parsed.Usage.InputTokens, parsed.Usage.OutputTokens)

	c.log.Info("generated",
		"model", c.model,
		"tokens_in", parsed.Usage.InputTokens,
		"tokens_out", parsed.Usage.OutputTokens,
		"cost_usd", cost,
	)

	return ai.Response{
		Content:      content.String(),
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
		CostUSD:      cost,
		Provider:     "claude",
		Model:        c.model,
		Success:      true,
	}
}

func (c *Claude) EstimateCost(inputTokens, outputTokens int) float64 {
	return c.cost(inputTokens, outputTokens)
}

func (c *Claude) cost(inputTokens, outputTokens int) float64 {
	prices, ok := claudePrices[c.model]
	if !ok {
		prices = claudePrices[claudeModels["sonnet"]]
	}
	cost := float64(inputTokens)/1_000_000*prices.input +
		float64(outputTokens)/1_000_000*prices.output
	return math.Round(cost*1e6) / 1e6
}

func (c *Claude) failure(message string) ai.Response {
	return ai.Response{
		Provider: "claude",
		Model:    c.model,
		Success:  false,
		Error:    message,
	}
}
