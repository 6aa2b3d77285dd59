// Package generator runs one schema generation end to end: render the
// prompt, call the model, extract a document from whatever came back. The
// model call is the only suspension point; extraction itself is synchronous
// and CPU-bound.
package generator

import (
	"context"
	"fmt"

	"github.com/schemadraft/schemadraft/internal/extractor"
	"github.com/schemadraft/schemadraft/internal/llm"
	"github.com/schemadraft/schemadraft/internal/prompt"
	"github.com/shopmonkeyus/go-common/logger"
)

// ResponseCache is an exact-match prompt cache. The session store implements
// it; a nil cache disables caching.
type ResponseCache interface {
	GetCachedResponse(prompt string) (string, bool, error)
	PutCachedResponse(prompt, response string) error
}

// Config is the configuration for a Generator.
type Config struct {
	// Logger to use for logging.
	Logger logger.Logger

	// Client is the language model to generate with.
	Client llm.Client

	// Cache is optional; identical prompts reuse the cached model response.
	Cache ResponseCache
}

// Generator produces schema documents from natural-language descriptions.
type Generator struct {
	logger logger.Logger
	client llm.Client
	cache  ResponseCache
}

// New creates a Generator.
func New(config Config) *Generator {
	return &Generator{
		logger: config.Logger.WithPrefix("[generator]"),
		client: config.Client,
		cache:  config.Cache,
	}
}

// Generate runs one generation request. Every failure mode is returned as an
// extraction failure result, never an error: a model transport failure
// produces a failure whose raw response is the error text, and an extraction
// failure carries up to 1000 characters of the raw model output for
// debugging the prompt.
func (g *Generator) Generate(ctx context.Context, req prompt.Request) extractor.Result {
	text, err := prompt.Build(req)
	if err != nil {
		// template execution over a value type; only reachable if the
		// template itself is broken
		return failure(fmt.Sprintf("Schema generation failed: %s", err), err.Error())
	}

	response, cached := g.cachedResponse(text)
	if !cached {
		g.logger.Debug("calling model (description: %d chars, type: %s)", len(req.Description), req.SchemaType)
		response, err = g.client.Generate(ctx, text)
		if err != nil {
			g.logger.Error("model call failed: %s", err)
			return failure(fmt.Sprintf("Schema generation failed: %s", err), err.Error())
		}
	}

	result := extractor.Extract(response)
	if !result.OK() {
		g.logger.Warn("extraction failed: %s", result.Failure.Error)
		result.Failure.RawResponse = extractor.Truncate(response, extractor.ErrorPathCap)
		return result
	}

	g.logger.Debug("extracted document via %s strategy", result.Strategy)
	if !cached && g.cache != nil {
		if err := g.cache.PutCachedResponse(text, response); err != nil {
			g.logger.Warn("failed to cache response: %s", err)
		}
	}
	return result
}

func (g *Generator) cachedResponse(text string) (string, bool) {
	if g.cache == nil {
		return "", false
	}
	response, found, err := g.cache.GetCachedResponse(text)
	if err != nil {
		g.logger.Warn("cache lookup failed: %s", err)
		return "", false
	}
	if found {
		g.logger.Debug("prompt cache hit")
	}
	return response, found
}

func failure(message, raw string) extractor.Result {
	return extractor.Result{Failure: &extractor.Failure{
		Error:       message,
		RawResponse: extractor.Truncate(raw, extractor.ErrorPathCap),
	}}
}
