package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/render"
	"github.com/matzehuels/riskflow/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats. The DOT source
// and SVG are produced at most once and shared by the formats derived from
// them.
func Render(ctx context.Context, m *model.Model, report *Report, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(m, report.Risk(), nodelink.Options{
		Detailed:  opts.Detailed,
		Threshold: opts.Threshold,
	})

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(data)
			}
		case FormatJSON:
			data, err = MarshalReport(report)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
