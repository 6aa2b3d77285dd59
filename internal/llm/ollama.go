package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"

	"github.com/schemadraft/schemadraft/internal/util"
	"github.com/shopmonkeyus/go-common/logger"
)

// DefaultOllamaURL is the local Ollama server address.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaConfig configures a local Ollama client.
type OllamaConfig struct {
	// URL of the Ollama server. Defaults to DefaultOllamaURL.
	URL string

	// Model to generate with, e.g. "mistral".
	Model string

	// Temperature for sampling.
	Temperature float64

	// NumCtx is the context window size to request. Zero uses the model default.
	NumCtx int

	// Logger to use for logging.
	Logger logger.Logger

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

type ollamaClient struct {
	config OllamaConfig
}

var _ Client = (*ollamaClient)(nil)

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	opts := map[string]any{"temperature": c.config.Temperature}
	if c.config.NumCtx > 0 {
		opts["num_ctx"] = c.config.NumCtx
	}
	payload := ollamaGenerateRequest{
		Model:   c.config.Model,
		Prompt:  prompt,
		Options: opts,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL+"/api/generate", bytes.NewReader([]byte(util.JSONStringify(payload))))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	retry := util.NewHTTPRetry(req, util.WithLogger(c.config.Logger), util.WithClient(c.config.HTTPClient))
	resp, err := retry.Do()
	if err != nil {
		return "", fmt.Errorf("error calling ollama: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(buf))
	}
	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("error decoding ollama response: %w", err)
	}
	return out.Response, nil
}

// NewOllama creates a client for a local Ollama server.
func NewOllama(config OllamaConfig) Client {
	if config.URL == "" {
		config.URL = DefaultOllamaURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &ollamaClient{config: config}
}

// OllamaInstalled reports whether the ollama binary is on the PATH.
func OllamaInstalled() bool {
	_, err := exec.LookPath("ollama")
	return err == nil
}

// OllamaReachable reports whether an Ollama server answers at url.
func OllamaReachable(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// OllamaModels returns the model names the server at url has pulled.
func OllamaModels(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling ollama: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("error decoding ollama response: %w", err)
	}
	names := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// StartOllamaServer spawns `ollama serve` detached from the current process.
func StartOllamaServer(log logger.Logger) error {
	cmd := exec.Command("ollama", "serve")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ollama: %w", err)
	}
	log.Debug("spawned ollama serve (pid: %d)", cmd.Process.Pid)
	// the server outlives us; don't wait on it
	go cmd.Wait()
	return nil
}

// EnsureOllamaRunning makes sure a local Ollama server is up, spawning one
// when the binary is installed but no server answers, and polling readiness
// for up to timeout.
func EnsureOllamaRunning(ctx context.Context, log logger.Logger, url string, timeout time.Duration) error {
	if url == "" {
		url = DefaultOllamaURL
	}
	if OllamaReachable(ctx, url) {
		log.Debug("ollama already running at %s", url)
		return nil
	}
	if !OllamaInstalled() {
		return fmt.Errorf("ollama is not installed. install it from https://ollama.com and run `ollama serve`")
	}
	log.Info("starting ollama server")
	if err := StartOllamaServer(log); err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if OllamaReachable(ctx, url) {
			log.Info("ollama ready at %s", url)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("ollama did not become ready within %s", timeout)
}
