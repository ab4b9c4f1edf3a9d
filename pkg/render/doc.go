// Package render provides output rendering for risk graphs.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders risk-shaded directed graph diagrams
// using Graphviz.
//
// [nodelink]: github.com/matzehuels/riskflow/pkg/render/nodelink
package render
