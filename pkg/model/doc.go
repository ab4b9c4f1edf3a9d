// Package model defines the persisted form of a risk graph and converts
// between it and a live [riskgraph.Graph].
//
// # Format
//
// A model lists vertices with optional intrinsic risks and direct edges with
// optional weights. Omitted values take the graph defaults when built:
//
//	{
//	  "name": "checkout",
//	  "vertices": [
//	    {"id": "db", "risk": 0.1},
//	    {"id": "api"}
//	  ],
//	  "edges": [
//	    {"from": "db", "to": "api", "weight": 0.5}
//	  ]
//	}
//
// The same document can be written as TOML using arrays of tables
// ([[vertices]] and [[edges]]). [ReadFile] and [WriteFile] pick the format
// from the file extension.
//
// Only handles, intrinsic risks and direct edges are persisted. The path
// registry and collapsed closure are derived state and are rebuilt from the
// edges by [Build].
//
// [riskgraph.Graph]: github.com/matzehuels/riskflow/pkg/riskgraph.Graph
package model
