// Package nodelink renders risk graphs as node-link diagrams.
//
// # Overview
//
// Vertices appear as boxes shaded by their total failure probability and
// edges as arrows labelled with their propagation weight. Layout is done by
// Graphviz.
//
// # Usage
//
// Convert a model and its risk vector to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(m, risk, nodelink.Options{Threshold: 0.2})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include own risk, total risk and metadata
//   - Threshold: outline vertices at or above this total risk
//   - RankDir: Graphviz rank direction (default LR)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
