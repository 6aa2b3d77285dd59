package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/schemadraft/schemadraft/internal/generator"
	"github.com/schemadraft/schemadraft/internal/session"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClient struct {
	response string
	err      error
}

func (c *scriptedClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.response, c.err
}

func newTestServer(t *testing.T, client *scriptedClient) (*Server, *session.Store) {
	t.Helper()
	log := logger.NewTestLogger()
	store, err := session.New(session.Config{Context: context.Background(), Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	gen := generator.New(generator.Config{Logger: log, Client: client})
	return New(Config{Logger: log, Generator: gen, Sessions: store}), store
}

func postBody(t *testing.T, handler http.Handler, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestGenerateSuccess(t *testing.T) {
	client := &scriptedClient{response: `{"schema_type":"relational","tables":[{"name":"users","fields":[{"name":"id","type":"int"}]}]}`}
	srv, _ := newTestServer(t, client)
	handler := srv.Handler()

	w := postBody(t, handler, "/api/generate", map[string]any{"description": "a user service"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.NotContains(t, doc, "error")
	assert.Equal(t, "relational", doc["schema_type"])

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, sessionCookie, cookies[0].Name)
}

func TestGenerateFailureHasErrorKey(t *testing.T) {
	client := &scriptedClient{response: "I could not produce what you asked for"}
	srv, _ := newTestServer(t, client)

	w := postBody(t, srv.Handler(), "/api/generate", map[string]any{"description": "a user service"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
	assert.Equal(t, "Failed to extract valid JSON from response", resp["error"])
	assert.Equal(t, client.response, resp["raw_response"])
}

func TestGenerateFailureRawResponseCapped(t *testing.T) {
	client := &scriptedClient{response: strings.Repeat("x", 2000)}
	srv, _ := newTestServer(t, client)

	w := postBody(t, srv.Handler(), "/api/generate", map[string]any{"description": "a user service"}, nil)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["raw_response"], 503)
	assert.True(t, strings.HasSuffix(resp["raw_response"], "..."))
}

func TestGenerateMissingDescription(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	w := postBody(t, srv.Handler(), "/api/generate", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
}

func TestSchemaRoundTrip(t *testing.T) {
	client := &scriptedClient{response: `{"schema_type":"nosql","collections":[{"name":"events","fields":[{"name":"ts","type":"date"}]}]}`}
	srv, _ := newTestServer(t, client)
	handler := srv.Handler()

	w := postBody(t, handler, "/api/generate", map[string]any{"description": "events", "schema_type": "nosql"}, nil)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	req.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.JSONEq(t, client.response, w2.Body.String())
}

func TestSchemaBeforeGenerate(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/schema", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
}

func TestDiagram(t *testing.T) {
	client := &scriptedClient{response: `{"schema_type":"relational","tables":[{"name":"users","fields":[{"name":"id","type":"int"}]}]}`}
	srv, _ := newTestServer(t, client)
	handler := srv.Handler()

	w := postBody(t, handler, "/api/generate", map[string]any{"description": "users"}, nil)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	for _, format := range []string{"mermaid", "dot"} {
		req := httptest.NewRequest(http.MethodGet, "/api/diagram?format="+format, nil)
		req.AddCookie(cookies[0])
		w2 := httptest.NewRecorder()
		handler.ServeHTTP(w2, req)

		require.Equal(t, http.StatusOK, w2.Code, format)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
		assert.Equal(t, format, resp["format"])
		assert.Contains(t, resp["diagram"], "users")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/diagram?format=ascii", nil)
	req.AddCookie(cookies[0])
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, req)
	assert.Equal(t, http.StatusBadRequest, w3.Code)
}

func TestDeployWithoutSchema(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	w := postBody(t, srv.Handler(), "/api/deploy", map[string]any{"url": "mysql://localhost/db"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeployUnknownScheme(t *testing.T) {
	client := &scriptedClient{response: `{"schema_type":"relational","tables":[{"name":"users","fields":[{"name":"id","type":"int"}]}]}`}
	srv, _ := newTestServer(t, client)
	handler := srv.Handler()

	w := postBody(t, handler, "/api/generate", map[string]any{"description": "users"}, nil)
	cookies := w.Result().Cookies()

	w2 := postBody(t, handler, "/api/deploy", map[string]any{"url": "oracle://localhost/db"}, cookies)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
}

func TestTestConnectionMissingURL(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	w := postBody(t, srv.Handler(), "/api/test-connection", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedback(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	w := postBody(t, srv.Handler(), "/api/feedback", map[string]any{"satisfaction": 85}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Contains(t, resp["message"], "85%")
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestIndexServed(t *testing.T) {
	srv, _ := newTestServer(t, &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SchemaDraft")
}
