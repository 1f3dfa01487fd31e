package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flowscope/flowscope/internal/telemetry"
	"github.com/flowscope/flowscope/pkg/buildinfo"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/observability"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/store"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// renderRequest is the body of POST /v1/render. Exactly one of Graph or
// GraphBase64 must be set; Graph wins when both are.
type renderRequest struct {
	Graph       json.RawMessage `json:"graph,omitempty"`
	GraphBase64 string          `json:"graph_base64,omitempty"`
	Options     renderOptions   `json:"options"`
}

// renderOptions are the per-request overrides of the configured render
// defaults. Nil pointer fields mean "keep the server default".
type renderOptions struct {
	Name              string   `json:"name,omitempty"`
	Direction         string   `json:"direction,omitempty"`
	SubgraphDirection string   `json:"subgraph_direction,omitempty"`
	Conditions        *bool    `json:"conditions,omitempty"`
	AutoLayout        bool     `json:"auto_layout,omitempty"`
	Formats           []string `json:"formats,omitempty"`
}

type createGraphRequest struct {
	Name  string          `json:"name"`
	Graph json.RawMessage `json:"graph"`
}

// artifactPayload carries one rendered artifact. Text formats (mermaid,
// flow, dot, svg) are inlined verbatim; binary formats (png, pdf) are
// base64-encoded, with Encoding naming which applies.
type artifactPayload struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type renderResponse struct {
	Name      string                     `json:"name"`
	Artifacts map[string]artifactPayload `json:"artifacts"`
	Warnings  []workflow.Warning         `json:"warnings,omitempty"`
	Stats     renderStats                `json:"stats"`
	Cache     cacheInfo                  `json:"cache"`
}

type renderStats struct {
	Nodes      int   `json:"nodes"`
	Edges      int   `json:"edges"`
	Containers int   `json:"containers"`
	Subflows   int   `json:"subflows"`
	Skipped    int   `json:"skipped"`
	DurationMS int64 `json:"duration_ms"`
}

type cacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key"`
}

// binaryFormats are base64-encoded in JSON responses.
var binaryFormats = map[pipeline.Format]bool{
	pipeline.FormatPNG: true,
	pipeline.FormatPDF: true,
}

func encodeArtifacts(artifacts map[pipeline.Format][]byte) map[string]artifactPayload {
	out := make(map[string]artifactPayload, len(artifacts))
	for format, data := range artifacts {
		if binaryFormats[format] {
			out[string(format)] = artifactPayload{
				Content:  base64.StdEncoding.EncodeToString(data),
				Encoding: "base64",
			}
		} else {
			out[string(format)] = artifactPayload{
				Content:  string(data),
				Encoding: "text",
			}
		}
	}
	return out
}

func newRenderResponse(res *pipeline.Result) renderResponse {
	return renderResponse{
		Name:      res.Name,
		Artifacts: encodeArtifacts(res.Artifacts),
		Warnings:  res.Warnings,
		Stats: renderStats{
			Nodes:      res.Stats.Nodes,
			Edges:      res.Stats.Edges,
			Containers: res.Stats.Containers,
			Subflows:   res.Stats.Subflows,
			Skipped:    res.Stats.Skipped,
			DurationMS: res.Stats.Duration.Milliseconds(),
		},
		Cache: cacheInfo{Hit: res.Cache.Hit, Key: res.Cache.Key},
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	name := req.Options.Name
	if name == "" {
		name = pipeline.DefaultName
	}

	var parse func() (*workflow.Graph, error)
	switch {
	case len(req.Graph) > 0:
		parse = func() (*workflow.Graph, error) { return workflow.Parse(req.Graph) }
	case req.GraphBase64 != "":
		parse = func() (*workflow.Graph, error) { return workflow.ParseBase64(req.GraphBase64) }
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "graph or graph_base64 is required"))
		return
	}
	g, err := parseGraph(r.Context(), name, parse)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.cfg.Render.PipelineOptions()
	opts.Graph = g
	opts.Name = name
	opts.UseCache = true
	opts.AutoLayout = req.Options.AutoLayout
	if req.Options.Direction != "" {
		opts.Direction = req.Options.Direction
	}
	if req.Options.SubgraphDirection != "" {
		opts.SubgraphDirection = req.Options.SubgraphDirection
	}
	if req.Options.Conditions != nil {
		opts.ShowConditions = req.Options.Conditions
	}
	for _, f := range req.Options.Formats {
		opts.Formats = append(opts.Formats, pipeline.Format(f))
	}

	res, err := s.execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRenderResponse(res))
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if len(req.Graph) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "graph is required"))
		return
	}

	name := req.Name
	if name == "" {
		name = pipeline.DefaultName
	}
	if err := errors.ValidateName(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := parseGraph(r.Context(), name, func() (*workflow.Graph, error) {
		return workflow.Parse(req.Graph)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := store.NewDocument(name, g, req.Graph)
	err = s.storeOp(r.Context(), "put", func() error {
		return s.store.Put(r.Context(), doc)
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "store graph"))
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be an integer, got %q", v))
			return
		}
		limit = n
	}

	var docs []store.Document
	err := s.storeOp(r.Context(), "list", func() error {
		var e error
		docs, e = s.store.List(r.Context(), limit)
		return e
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "list graphs"))
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateGraphID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.storeOp(r.Context(), "delete", func() error {
		return s.store.Delete(r.Context(), id)
	})
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "delete graph %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraphMermaid(w http.ResponseWriter, r *http.Request) {
	data, ok := s.renderStored(w, r, pipeline.FormatMermaid)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleGraphFlow(w http.ResponseWriter, r *http.Request) {
	data, ok := s.renderStored(w, r, pipeline.FormatFlow)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	data, ok := s.renderStored(w, r, pipeline.FormatSVG)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

// =============================================================================
// Shared Handler Plumbing
// =============================================================================

// parseGraph runs one parse inside a parse stage span and through the
// pipeline parse hooks, so registered telemetry sees parse latency and
// failure counts.
func parseGraph(ctx context.Context, name string, parse func() (*workflow.Graph, error)) (*workflow.Graph, error) {
	ctx, span := telemetry.StartStageSpan(ctx, "parse")
	observability.Pipeline().OnParseStart(ctx, name)
	start := time.Now()
	g, err := parse()

	nodes, edges := 0, 0
	if g != nil {
		nodes, edges = len(g.Nodes()), len(g.Edges())
	}
	observability.Pipeline().OnParseComplete(ctx, name, nodes, edges, time.Since(start), err)
	telemetry.EndSpanWithError(span, err)
	return g, err
}

// execute runs the pipeline inside a trace span. The span is a no-op unless
// telemetry has been registered.
func (s *Server) execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, span := telemetry.StartPipelineSpan(ctx, opts.Name)
	res, err := s.runner.Execute(ctx, opts)
	telemetry.EndSpanWithError(span, err)
	return res, err
}

// loadDocument fetches the document named by the id route param, writing
// the error response itself when the lookup fails.
func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (store.Document, bool) {
	id := chi.URLParam(r, "id")
	var doc store.Document
	if err := errors.ValidateGraphID(id); err != nil {
		s.writeError(w, r, err)
		return doc, false
	}
	err := s.storeOp(r.Context(), "get", func() error {
		var e error
		doc, e = s.store.Get(r.Context(), id)
		return e
	})
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id))
		return doc, false
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "load graph %s", id))
		return doc, false
	}
	return doc, true
}

// renderOptionsFromQuery overlays direction, subdir, conditions, and layout
// query parameters on the configured render defaults.
func (s *Server) renderOptionsFromQuery(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Render.PipelineOptions()
	q := r.URL.Query()

	if v := q.Get("direction"); v != "" {
		opts.Direction = v
	}
	if v := q.Get("subdir"); v != "" {
		opts.SubgraphDirection = v
	}
	if v := q.Get("conditions"); v != "" {
		show, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "conditions must be a boolean, got %q", v)
		}
		opts.ShowConditions = &show
	}
	if v := q.Get("layout"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "layout must be a boolean, got %q", v)
		}
		opts.AutoLayout = on
	}
	return opts, nil
}

// renderStored renders one stored document into a single format.
func (s *Server) renderStored(w http.ResponseWriter, r *http.Request, format pipeline.Format) ([]byte, bool) {
	doc, ok := s.loadDocument(w, r)
	if !ok {
		return nil, false
	}

	g, err := parseGraph(r.Context(), doc.Name, func() (*workflow.Graph, error) {
		return workflow.Parse(doc.Payload)
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "stored payload for %s no longer parses", doc.ID))
		return nil, false
	}

	opts, err := s.renderOptionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	opts.Graph = g
	opts.Name = doc.Name
	opts.UseCache = true
	opts.Formats = []pipeline.Format{format}

	res, err := s.execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res.Artifacts[format], true
}
