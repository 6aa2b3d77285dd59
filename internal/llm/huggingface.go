package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/schemadraft/schemadraft/internal/util"
	"github.com/shopmonkeyus/go-common/logger"
)

const defaultInferenceURL = "https://api-inference.huggingface.co/models/"

// HuggingFaceConfig configures a hosted Hugging Face Inference API client.
type HuggingFaceConfig struct {
	// Token is the API token. Required.
	Token string

	// RepoID is the model repository, e.g. "mistralai/Mixtral-8x7B-Instruct-v0.1".
	RepoID string

	// Temperature for sampling.
	Temperature float64

	// MaxLength caps the generated sequence length. Zero uses the API default.
	MaxLength int

	// BaseURL overrides the inference endpoint, mainly for tests.
	BaseURL string

	// Logger to use for logging.
	Logger logger.Logger

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

type huggingFaceClient struct {
	config HuggingFaceConfig
}

var _ Client = (*huggingFaceClient)(nil)

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type hfGeneratedText struct {
	GeneratedText string `json:"generated_text"`
}

func (c *huggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	params := map[string]any{"temperature": c.config.Temperature, "return_full_text": false}
	if c.config.MaxLength > 0 {
		params["max_length"] = c.config.MaxLength
	}
	payload := hfRequest{Inputs: prompt, Parameters: params}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+c.config.RepoID, bytes.NewReader([]byte(util.JSONStringify(payload))))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	retry := util.NewHTTPRetry(req, util.WithLogger(c.config.Logger), util.WithClient(c.config.HTTPClient))
	resp, err := retry.Do()
	if err != nil {
		return "", fmt.Errorf("error calling inference api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("inference api returned status %d: %s", resp.StatusCode, string(buf))
	}
	var out []hfGeneratedText
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("error decoding inference response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("inference api returned no generations")
	}
	return out[0].GeneratedText, nil
}

// NewHuggingFace creates a client for the hosted Hugging Face Inference API.
func NewHuggingFace(config HuggingFaceConfig) (Client, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("missing hugging face api token")
	}
	if config.RepoID == "" {
		return nil, fmt.Errorf("missing hugging face model repo id")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultInferenceURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &huggingFaceClient{config: config}, nil
}
