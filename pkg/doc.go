// Package pkg provides the core libraries for riskflow failure-propagation
// analysis.
//
// # Overview
//
// Riskflow models a system as a directed graph whose vertices are components
// with an intrinsic failure probability and whose edges carry the probability
// that a failure propagates from one component to the next. For every vertex
// it computes the total probability of failure, from its own risk and from
// every failure that can reach it along a simple path.
//
// # Architecture
//
// The typical data flow:
//
//	Model file (JSON / TOML) or API request
//	         ↓
//	    [model] package (validate, build)
//	         ↓
//	    [riskgraph] package (incremental path closure + risk)
//	         ↓
//	    [pipeline] package (report, cache, render)
//	         ↓
//	    Table / SVG / PNG / PDF / DOT / JSON
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/riskflow/pkg/model"
//	    "github.com/matzehuels/riskflow/pkg/pipeline"
//	    "github.com/matzehuels/riskflow/pkg/riskgraph"
//	)
//
//	m, _ := model.ReadFile("system.json")
//	report, g, _ := pipeline.Analyze(m, riskgraph.Options{})
//	for _, v := range report.Ranked() {
//	    fmt.Printf("%s %.3f\n", v.ID, v.Total)
//	}
//	paths, _ := g.Paths("db", "api")
//
// # Main Packages
//
// ## Core Domain Logic
//
// [riskgraph] - The engine. A generic graph over caller-chosen handles that
// keeps, for every ordered pair of vertices, the set of simple paths between
// them and their probabilities. Edge and vertex updates patch the path sets
// incrementally; total risk is derived from the collapsed path probabilities.
//
// [model] - The persistence format: handles, intrinsic risks and direct
// edges, read from and written to JSON or TOML.
//
// ## Orchestration
//
// [pipeline] - Analyze, then render. Used by the CLI and the API so both
// produce the same reports and artifacts, with results cached by model hash.
//
// [render] - SVG to PDF/PNG conversion. [render/nodelink] draws risk-shaded
// Graphviz diagrams.
//
// ## Infrastructure
//
// [cache] - Result cache with file, Redis and null backends.
//
// [store] - Snapshot persistence with memory, file and MongoDB backends.
//
// [session] - Live, mutable graphs with sliding expiry, for the API.
//
// [api] - The HTTP API (chi router) over sessions and snapshots.
//
// [observability] - Hook interfaces for pipeline, cache, graph and HTTP
// events, with a Prometheus implementation in observability/prom.
//
// [errors] - Error codes shared by every layer, with HTTP status mapping.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/riskgraph/...          # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [riskgraph]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/riskgraph
// [model]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/model
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/session
// [api]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/riskflow/pkg/errors
package pkg
