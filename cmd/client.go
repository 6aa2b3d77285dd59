package cmd

import (
	"fmt"

	"github.com/schemadraft/schemadraft/internal/llm"
	"github.com/shopmonkeyus/go-common/logger"
)

// newLLMClient builds the model client selected by the provider setting.
func newLLMClient(log logger.Logger) (llm.Client, error) {
	switch cfg.Provider {
	case "ollama":
		return llm.NewOllama(llm.OllamaConfig{
			URL:         cfg.OllamaURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			NumCtx:      cfg.NumCtx,
			Logger:      log,
		}), nil
	case "huggingface":
		return llm.NewHuggingFace(llm.HuggingFaceConfig{
			Token:       cfg.HFToken,
			RepoID:      cfg.HFRepo,
			Temperature: cfg.Temperature,
			Logger:      log,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s (expected ollama or huggingface)", cfg.Provider)
	}
}
