package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds intrinsic risk, total risk and metadata to node labels.
	// When false, labels show the vertex ID and total risk only.
	Detailed bool

	// Threshold outlines vertices whose total risk is at or above it.
	// Zero disables highlighting.
	Threshold float64

	// RankDir is the Graphviz rank direction. Defaults to "LR".
	RankDir string
}

// ToDOT converts a model and its computed risk to Graphviz DOT. Nodes are
// filled from white (risk 0) to red (risk 1); edges are labelled with their
// weight and drawn thicker for stronger propagation. Vertices missing from
// risk are drawn unfilled.
func ToDOT(m *model.Model, risk map[string]float64, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#555555\"];\n")
	buf.WriteString("\n")

	for _, v := range m.Vertices {
		total, ok := risk[v.ID]
		label := fmtLabel(v, total, ok, opts.Detailed)
		attrs := fmtAttrs(label, total, ok, opts.Threshold)
		fmt.Fprintf(&buf, "  %q [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range m.Edges {
		w := 1.0
		if e.Weight != nil {
			w = *e.Weight
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%.2f\", penwidth=%.2f];\n", e.From, e.To, w, 0.5+2.5*w)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(v model.Vertex, total float64, known, detailed bool) string {
	if !known {
		return v.ID
	}
	if !detailed {
		return fmt.Sprintf("%s\n%.1f%%", v.ID, 100*total)
	}

	parts := []string{fmt.Sprintf("total: %.4f", total)}
	if v.Risk != nil {
		parts = append(parts, fmt.Sprintf("own: %.4f", *v.Risk))
	}
	for _, k := range slices.Sorted(maps.Keys(v.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, v.Meta[k]))
	}
	return v.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(label string, total float64, known bool, threshold float64) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !known {
		return attrs
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", RiskColor(total)))
	if total > 0.6 {
		attrs = append(attrs, "fontcolor=white")
	}
	if threshold > 0 && total >= threshold {
		attrs = append(attrs, "color=\"#b00020\"", "penwidth=3")
	}
	return attrs
}

// RiskColor maps a probability to a hex color on a white-to-red ramp.
func RiskColor(p float64) string {
	p = math.Max(0, math.Min(1, p))
	gb := int(math.Round(255 * (1 - p)))
	return fmt.Sprintf("#ff%02x%02x", gb, gb)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from a zero
// origin with explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
