package api

import (
	"time"

	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/pipeline"
)

// createGraphRequest seeds a new session. Model may be omitted.
type createGraphRequest struct {
	Model *model.Model `json:"model,omitempty"`
}

// graphInfo describes a live session.
type graphInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Vertices  int       `json:"vertices"`
	Edges     int       `json:"edges"`
	Paths     int       `json:"paths"`
	Capacity  int       `json:"capacity"`
}

type graphResponse struct {
	graphInfo
	Model *model.Model `json:"model"`
}

type addVerticesRequest struct {
	Vertices []model.Vertex `json:"vertices"`
}

type patchVertexRequest struct {
	Risk *float64       `json:"risk,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

type vertexResponse struct {
	pipeline.VertexRisk
	Meta map[string]any `json:"meta,omitempty"`
}

type setEdgesRequest struct {
	Edges []model.Edge `json:"edges"`
}

type pathInfo struct {
	Vertices    []string `json:"vertices"`
	Probability float64  `json:"probability"`
}

type edgeResponse struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Weight    float64    `json:"weight"`
	Collapsed float64    `json:"collapsed"`
	Paths     []pathInfo `json:"paths"`
}

type analyzeGraphRequest struct {
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`
}

type analyzeResponse struct {
	ModelHash string             `json:"model_hash"`
	Report    *pipeline.Report   `json:"report"`
	Artifacts map[string]any     `json:"artifacts,omitempty"`
	Cache     pipeline.CacheInfo `json:"cache"`
}
