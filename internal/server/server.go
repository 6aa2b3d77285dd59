// Package server exposes the designer over HTTP: a small embedded UI plus a
// JSON API. API responses are JSON-object mappings; callers distinguish
// success from failure solely by the presence of an "error" key.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/schemadraft/schemadraft/internal/diagram"
	"github.com/schemadraft/schemadraft/internal/extractor"
	"github.com/schemadraft/schemadraft/internal/generator"
	"github.com/schemadraft/schemadraft/internal/prompt"
	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/schemadraft/schemadraft/internal/session"
	"github.com/schemadraft/schemadraft/internal/targets"
	"github.com/schemadraft/schemadraft/internal/util"
	"github.com/shopmonkeyus/go-common/logger"
	"golang.org/x/sync/errgroup"
)

//go:embed index.html
var content embed.FS

const sessionCookie = "schemadraft_session"

// Config is the configuration for the server.
type Config struct {
	// Logger to use for logging.
	Logger logger.Logger

	// Generator runs the model calls.
	Generator *generator.Generator

	// Sessions holds per-session state.
	Sessions *session.Store

	// Addr to listen on, e.g. ":8501".
	Addr string
}

// Server is the HTTP surface of the designer.
type Server struct {
	logger    logger.Logger
	generator *generator.Generator
	sessions  *session.Store
	addr      string
}

// New creates a Server.
func New(config Config) *Server {
	return &Server{
		logger:    config.Logger.WithPrefix("[server]"),
		generator: config.Generator,
		sessions:  config.Sessions,
		addr:      config.Addr,
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, val any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(val); err != nil {
		s.logger.Error("error encoding response: %s", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// sessionID returns the request's session id, minting one (and setting the
// cookie) for first-time visitors.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := s.sessions.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type generateRequest struct {
	Description string `json:"description"`
	SchemaType  string `json:"schema_type"`
	IncludeCode bool   `json:"include_code"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		s.writeError(w, http.StatusBadRequest, "Please provide an application description")
		return
	}
	if req.SchemaType == "" {
		req.SchemaType = schema.SchemaTypeRelational
	}

	id := s.sessionID(w, r)
	result := s.generator.Generate(r.Context(), prompt.Request{
		Description: req.Description,
		SchemaType:  req.SchemaType,
		IncludeCode: req.IncludeCode,
	})

	state := &session.State{}
	if prev, found, err := s.sessions.GetState(id); err == nil && found {
		state = prev
	}
	state.Document = result.Document
	state.JSON = result.JSON
	state.Failure = result.Failure
	if err := s.sessions.PutState(id, state); err != nil {
		s.logger.Error("error saving session state: %s", err)
	}

	if !result.OK() {
		// the session keeps the longer diagnostic; the UI gets the shorter cap
		s.writeJSON(w, http.StatusOK, errorResponse{
			Error:       result.Failure.Error,
			RawResponse: extractor.Truncate(result.Failure.RawResponse, extractor.UICap),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.JSON)
}

// state loads the session state, writing the API error when there is nothing
// usable yet.
func (s *Server) state(w http.ResponseWriter, r *http.Request) (*session.State, string, bool) {
	id := s.sessionID(w, r)
	state, found, err := s.sessions.GetState(id)
	if err != nil {
		s.logger.Error("error loading session state: %s", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load session state")
		return nil, id, false
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "no schema generated yet")
		return nil, id, false
	}
	return state, id, true
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	state, _, ok := s.state(w, r)
	if !ok {
		return
	}
	if state.Failure != nil {
		s.writeJSON(w, http.StatusOK, errorResponse{
			Error:       state.Failure.Error,
			RawResponse: extractor.Truncate(state.Failure.RawResponse, extractor.UICap),
		})
		return
	}
	if state.Document == nil {
		s.writeError(w, http.StatusNotFound, "no schema generated yet")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(state.JSON)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	state, _, ok := s.state(w, r)
	if !ok {
		return
	}
	if state.Document == nil {
		s.writeError(w, http.StatusNotFound, "no schema generated yet")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "mermaid"
	}
	rendered, err := diagram.Render(format, state.Document)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"format": format, "diagram": rendered})
}

type deployRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req deployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "missing connection url")
		return
	}
	target, err := targets.ForURL(req.URL)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := target.Test(r.Context(), s.logger, req.URL); err != nil {
		s.writeError(w, http.StatusOK, fmt.Sprintf("connection failed: %s", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	state, id, ok := s.state(w, r)
	if !ok {
		return
	}
	if state.Document == nil {
		s.writeError(w, http.StatusNotFound, "no schema generated yet")
		return
	}
	var req deployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	urlstr := req.URL
	if urlstr == "" {
		urlstr = state.TargetURL
	}
	if urlstr == "" {
		s.writeError(w, http.StatusBadRequest, "missing connection url")
		return
	}
	target, err := targets.ForURL(urlstr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	masked, _ := util.MaskURL(urlstr)
	s.logger.Info("deploying schema to %s", masked)
	if err := target.Deploy(r.Context(), s.logger, urlstr, state.Document); err != nil {
		s.writeError(w, http.StatusOK, fmt.Sprintf("deploy failed: %s", err))
		return
	}
	state.TargetURL = urlstr
	if err := s.sessions.PutState(id, state); err != nil {
		s.logger.Error("error saving session state: %s", err)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "schema deployed"})
}

type feedbackRequest struct {
	Satisfaction int `json:"satisfaction"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Info("feedback received: %d%%", req.Satisfaction)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Thank you for your feedback! (%d%%)", req.Satisfaction),
	})
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, targets.GetMetadata())
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic serving %s: %v", r.URL.Path, rec)
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requireMethod(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.FS(content)))
	mux.HandleFunc("/api/generate", requireMethod(http.MethodPost, s.handleGenerate))
	mux.HandleFunc("/api/schema", requireMethod(http.MethodGet, s.handleSchema))
	mux.HandleFunc("/api/diagram", requireMethod(http.MethodGet, s.handleDiagram))
	mux.HandleFunc("/api/test-connection", requireMethod(http.MethodPost, s.handleTestConnection))
	mux.HandleFunc("/api/deploy", requireMethod(http.MethodPost, s.handleDeploy))
	mux.HandleFunc("/api/feedback", requireMethod(http.MethodPost, s.handleFeedback))
	mux.HandleFunc("/api/targets", requireMethod(http.MethodGet, s.handleTargets))
	return s.recoverMiddleware(mux)
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
