package generator

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/schemadraft/schemadraft/internal/extractor"
	"github.com/schemadraft/schemadraft/internal/prompt"
	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type memoryCache struct {
	entries map[string]string
}

func (m *memoryCache) GetCachedResponse(prompt string) (string, bool, error) {
	val, ok := m.entries[prompt]
	return val, ok, nil
}

func (m *memoryCache) PutCachedResponse(prompt, response string) error {
	m.entries[prompt] = response
	return nil
}

func TestGenerateSuccess(t *testing.T) {
	client := &fakeClient{response: `{"schema_type":"relational","tables":[{"name":"users"}],"explanation":"simple"}`}
	gen := New(Config{Logger: logger.NewTestLogger(), Client: client})

	res := gen.Generate(context.Background(), prompt.Request{Description: "a blog", SchemaType: schema.SchemaTypeRelational})
	require.True(t, res.OK())
	assert.Equal(t, "direct", res.Strategy)
	assert.Equal(t, "simple", res.Document.Explanation)
	require.Len(t, res.Document.Entities(), 1)
}

func TestGenerateExtractionFailureCarriesLongerRaw(t *testing.T) {
	raw := "no json here " + strings.Repeat("z", 2000)
	client := &fakeClient{response: raw}
	gen := New(Config{Logger: logger.NewTestLogger(), Client: client})

	res := gen.Generate(context.Background(), prompt.Request{Description: "x", SchemaType: schema.SchemaTypeNoSQL})
	require.False(t, res.OK())
	// the generation-error path forwards up to 1000 chars, not the UI's 500
	assert.Len(t, res.Failure.RawResponse, extractor.ErrorPathCap+len("..."))
	assert.Equal(t, raw[:extractor.ErrorPathCap], strings.TrimSuffix(res.Failure.RawResponse, "..."))
}

func TestGenerateModelError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("connection refused")}
	gen := New(Config{Logger: logger.NewTestLogger(), Client: client})

	res := gen.Generate(context.Background(), prompt.Request{Description: "x", SchemaType: schema.SchemaTypeRelational})
	require.False(t, res.OK())
	assert.Contains(t, res.Failure.Error, "Schema generation failed")
	assert.Contains(t, res.Failure.Error, "connection refused")
	assert.Equal(t, "connection refused", res.Failure.RawResponse)
}

func TestGenerateUsesCache(t *testing.T) {
	client := &fakeClient{response: `{"schema_type":"nosql","collections":[]}`}
	cache := &memoryCache{entries: make(map[string]string)}
	gen := New(Config{Logger: logger.NewTestLogger(), Client: client, Cache: cache})

	req := prompt.Request{Description: "same request", SchemaType: schema.SchemaTypeNoSQL}
	first := gen.Generate(context.Background(), req)
	require.True(t, first.OK())
	second := gen.Generate(context.Background(), req)
	require.True(t, second.OK())

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, first.JSON, second.JSON)
}

func TestGenerateDoesNotCacheFailures(t *testing.T) {
	client := &fakeClient{response: "not json"}
	cache := &memoryCache{entries: make(map[string]string)}
	gen := New(Config{Logger: logger.NewTestLogger(), Client: client, Cache: cache})

	req := prompt.Request{Description: "bad", SchemaType: schema.SchemaTypeRelational}
	res := gen.Generate(context.Background(), req)
	require.False(t, res.OK())
	assert.Empty(t, cache.entries)

	gen.Generate(context.Background(), req)
	assert.Equal(t, 2, client.calls)
}
