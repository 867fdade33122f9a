package ai

import (
	"context"
	"log/slog"
	"math"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/config"
)

// Pricing per 1M tokens in USD.
const (
	deepseekInputPrice      = 0.28
	deepseekInputCachePrice = 0.028
	deepseekOutputPrice     = 0.42
)

// DeepSeek drives the bulk article generation tier. DeepSeek exposes an
// OpenAI-compatible API, so the official openai-go SDK is pointed at its
// base URL.
type DeepSeek struct {
	model string
	opts  []option.RequestOption
	log   *slog.Logger
}

var _ ai.Provider = (*DeepSeek)(nil)

func NewDeepSeek(cfg config.DeepSeekConfig, model string, log *slog.Logger) *DeepSeek {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &DeepSeek{
		model: model,
		opts:  opts,
		log:   log.With("component", "deepseek"),
	}
}

func (d *DeepSeek) Generate(ctx context.Context, prompt, system string, maxTokens int, temperature float64) ai.Response {
	client := openai.NewClient(d.opts...)

	var msgs []openai.ChatCompletionMessageParamUnion
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(d.model),
		Messages:    msgs,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		d.log.Error("generation failed", "model", d.model, "error", err)
		return ai.Response{
			Provider: "deepseek",
			Model:    d.model,
			Success:  false,
			Error:    err.Error(),
		}
	}

	inputTokens := int(resp.Usage.PromptTokens)
	outputTokens := int(resp.Usage.CompletionTokens)
	cacheHit := resp.Usage.PromptTokensDetails.CachedTokens > 0
	cost := deepseekCost(inputTokens, outputTokens, cacheHit)

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	d.log.Info("generated",
		"model", d.model,
		"tokens_in", inputTokens,
		"tokens_out", outputTokens,
		"cost_usd", cost,
		"cache_hit", cacheHit,
	)

	return ai.Response{
		Content:      content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      cost,
		Provider:     "deepseek",
		Model:        d.model,
		CacheHit:     cacheHit,
		Success:      true,
	}
}

// EstimateCost prices tokens at the cache-miss input rate.
func (d *DeepSeek) EstimateCost(inputTokens, outputTokens int) float64 {
	return deepseekCost(inputTokens, outputTokens, false)
}

func deepseekCost(inputTokens, outputTokens int, cacheHit bool) float64 {
	inputPrice := deepseekInputPrice
	if cacheHit {
		inputPrice = deepseekInputCachePrice
	}
	cost := float64(inputTokens)/1_000_000*inputPrice +
		float64(outputTokens)/1_000_000*deepseekOutputPrice
	return math.Round(cost*1e6) / 1e6
}
