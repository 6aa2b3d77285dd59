// Package llm contains the language-model clients used to generate schema
// documents. The clients are deliberately thin: one prompt in, one raw text
// blob out. Interpreting the blob belongs to the extractor.
package llm

import "context"

// Client generates a single completion for a prompt. Implementations must
// return the model output verbatim; no cleanup or JSON handling happens here.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
