package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/observability"
	"github.com/matzehuels/riskflow/pkg/pipeline"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
	"github.com/matzehuels/riskflow/pkg/session"
)

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func info(sess *session.Session, g *riskgraph.Graph[string]) graphInfo {
	return graphInfo{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		Vertices:  g.Len(),
		Edges:     g.EdgeCount(),
		Paths:     g.PathCount(),
		Capacity:  g.Capacity(),
	}
}

func sessionInfo(sess *session.Session) graphInfo {
	var gi graphInfo
	_ = sess.Do(func(g *riskgraph.Graph[string]) error {
		gi = info(sess, g)
		return nil
	})
	gi.ExpiresAt = sess.ExpiresAt()
	return gi
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	out := make([]graphInfo, 0, len(list))
	for _, sess := range list {
		out = append(out, sessionInfo(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	if err := s.decode(w, r, &req, true); err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.sessions.Create(req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Model != nil {
		for _, v := range req.Model.Vertices {
			observability.Graph().OnVertexAdded(r.Context(), sess.ID, v.ID)
		}
	}
	s.logger.Debug("session created", "id", sess.ID, "name", sess.Name)
	writeJSON(w, http.StatusCreated, graphResponse{graphInfo: sessionInfo(sess), Model: sess.Model()})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, graphResponse{graphInfo: sessionInfo(sess), Model: sess.Model()})
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Vertices
// =============================================================================

func (s *Server) handleAddVertices(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req addVerticesRequest
	if err := s.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	handles := make([]string, len(req.Vertices))
	for i, v := range req.Vertices {
		if err := errors.ValidateVertexID(v.ID); err != nil {
			writeError(w, err)
			return
		}
		handles[i] = v.ID
	}

	var gi graphInfo
	err := sess.Do(func(g *riskgraph.Graph[string]) error {
		risks := make([]float64, len(req.Vertices))
		for i, v := range req.Vertices {
			risks[i] = g.DefaultRisk()
			if v.Risk != nil {
				risks[i] = *v.Risk
			}
		}
		if _, err := g.RegisterBatch(handles, risks); err != nil {
			return err
		}
		gi = info(sess, g)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	for _, v := range req.Vertices {
		if v.Meta != nil {
			sess.SetMeta(v.ID, v.Meta)
		}
		observability.Graph().OnVertexAdded(r.Context(), sess.ID, v.ID)
	}
	gi.ExpiresAt = sess.ExpiresAt()
	writeJSON(w, http.StatusCreated, gi)
}

func (s *Server) handleGetVertex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "vertex")

	var resp vertexResponse
	err := sess.Do(func(g *riskgraph.Graph[string]) error {
		intrinsic, err := g.Risk(id)
		if err != nil {
			return err
		}
		total, _ := g.RiskOf(id)
		contribs, _ := g.Contributions(id)
		resp.VertexRisk = pipeline.VertexRisk{ID: id, Intrinsic: intrinsic, Total: total}
		for _, c := range contribs {
			resp.Sources = append(resp.Sources, pipeline.Source{ID: c.Source, Value: c.Value})
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp.Meta = sess.Model().Meta(id)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePatchVertex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "vertex")
	var req patchVertexRequest
	if err := s.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	err := sess.Do(func(g *riskgraph.Graph[string]) error {
		if req.Risk != nil {
			return g.SetRisk(id, *req.Risk)
		}
		_, err := g.IndexOf(id)
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Meta != nil {
		sess.SetMeta(id, req.Meta)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteVertex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "vertex")
	if err := sess.Do(func(g *riskgraph.Graph[string]) error { return g.Unregister(id) }); err != nil {
		writeError(w, err)
		return
	}
	sess.SetMeta(id, nil)
	observability.Graph().OnVertexRemoved(r.Context(), sess.ID, id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Edges
// =============================================================================

func (s *Server) handleSetEdges(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req setEdgesRequest
	if err := s.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	edges := make([]riskgraph.Edge[string], len(req.Edges))
	for i, e := range req.Edges {
		edges[i] = riskgraph.Edge[string]{From: e.From, To: e.To}
		if e.Weight != nil {
			if err := errors.ValidateWeight(*e.Weight); err != nil {
				writeError(w, err)
				return
			}
			edges[i].Weight = *e.Weight
		}
	}

	var gi graphInfo
	err := sess.Do(func(g *riskgraph.Graph[string]) error {
		if err := g.SetEdges(edges); err != nil {
			return err
		}
		for i, e := range edges {
			edges[i].Weight, _ = g.Weight(e.From, e.To)
		}
		gi = info(sess, g)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	for _, e := range edges {
		observability.Graph().OnEdgeSet(r.Context(), sess.ID, e.From, e.To, e.Weight)
	}
	gi.ExpiresAt = sess.ExpiresAt()
	writeJSON(w, http.StatusOK, gi)
}

func (s *Server) handleGetEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	from, to := chi.URLParam(r, "from"), chi.URLParam(r, "to")

	resp := edgeResponse{From: from, To: to, Paths: []pathInfo{}}
	err := sess.Do(func(g *riskgraph.Graph[string]) error {
		var err error
		if resp.Weight, err = g.Weight(from, to); err != nil {
			return err
		}
		if resp.Collapsed, err = g.Collapsed(from, to); err != nil {
			return err
		}
		paths, err := g.Paths(from, to)
		if err != nil {
			return err
		}
		for _, p := range paths {
			resp.Paths = append(resp.Paths, pathInfo{Vertices: p.Handles, Probability: p.Prob})
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	from, to := chi.URLParam(r, "from"), chi.URLParam(r, "to")
	if err := sess.Do(func(g *riskgraph.Graph[string]) error { return g.ClearEdge(from, to) }); err != nil {
		writeError(w, err)
		return
	}
	observability.Graph().OnEdgeCleared(r.Context(), sess.ID, from, to)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Risk
// =============================================================================

// handleRisk returns the risk report. ?threshold=p keeps only vertices at
// or above p, ranked by total risk.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	threshold := -1.0
	if q := r.URL.Query().Get("threshold"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil || v < 0 || v > 1 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "threshold %q must be a number in [0,1]", q))
			return
		}
		threshold = v
	}

	var (
		report      *pipeline.Report
		vertices, n int
		elapsed     time.Duration
	)
	_ = sess.Do(func(g *riskgraph.Graph[string]) error {
		start := time.Now()
		report = pipeline.ReportFromGraph(g, sess.Name)
		elapsed = time.Since(start)
		vertices, n = g.Len(), g.PathCount()
		return nil
	})
	observability.Graph().OnRiskComputed(r.Context(), sess.ID, vertices, n, elapsed)

	if threshold >= 0 {
		report.Vertices = report.Above(threshold)
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAnalyze runs the pipeline on a posted model without creating a
// session.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := s.decode(w, r, &opts, false); err != nil {
		writeError(w, err)
		return
	}
	s.analyze(w, r, opts)
}

// handleAnalyzeGraph runs the pipeline on a session's current model, with
// the session's graph settings.
func (s *Server) handleAnalyzeGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req analyzeGraphRequest
	if err := s.decode(w, r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	g := s.sessions.GraphOptions()
	s.analyze(w, r, pipeline.Options{
		Model:         sess.Model(),
		Capacity:      g.Capacity,
		DefaultRisk:   g.DefaultRisk,
		DefaultWeight: g.DefaultWeight,
		Formats:       req.Formats,
		Detailed:      req.Detailed,
		Threshold:     req.Threshold,
		Refresh:       req.Refresh,
	})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	opts.Logger = s.logger
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := analyzeResponse{
		ModelHash: result.ModelHash,
		Report:    result.Report,
		Cache:     result.CacheInfo,
		Artifacts: make(map[string]any, len(result.Artifacts)),
	}
	for format, data := range result.Artifacts {
		switch format {
		case pipeline.FormatJSON:
			// The report is already in the response.
		case pipeline.FormatDOT, pipeline.FormatSVG:
			resp.Artifacts[format] = string(data)
		default:
			resp.Artifacts[format] = data
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
