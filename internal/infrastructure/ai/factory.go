package ai

import (
	"fmt"
	"log/slog"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/config"
)

// NewFactory returns the provider factory the router memoizes behind:
// it maps a provider id from the routing table to a concrete client.
func NewFactory(cfg config.ProvidersConfig, log *slog.Logger) ai.Factory {
	return func(providerID, model string) (ai.Provider, error) {
		switch providerID {
		case "deepseek":
			return NewDeepSeek(cfg.DeepSeek, model, log), nil
		case "claude":
			return NewClaude(cfg.Claude, model, log), nil
		default:
			return nil, fmt.Errorf("unknown provider %q", providerID)
		}
	}
}
