package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	graph     graphFlags
	formats   string
	output    string
	detailed  bool
	threshold float64
}

// renderCommand creates the render command for generating risk diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := &renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [model-file]",
		Short: "Render a risk diagram from a model file",
		Long: `Render draws the propagation graph with every vertex shaded by its total
failure risk and every edge labelled with its weight.

Supported formats: svg, png, pdf, dot, json. PNG and PDF need rsvg-convert.`,
		Example: `  # SVG next to the model file
  riskflow render system.json

  # Several formats, highlighting vertices above 30%
  riskflow render system.toml -f svg,pdf --threshold 0.3 -o out/system`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
		ValidArgsFunction: completeModelFile,
	}

	opts.graph.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, pdf, dot, json (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file base (extension is replaced per format)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show own risk, total risk and metadata in node labels")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "outline vertices at or above this total risk")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	m, err := model.ReadFile(input)
	if err != nil {
		return err
	}
	popts, err := opts.graph.options(c, m)
	if err != nil {
		return err
	}
	popts.Formats = formats
	popts.Detailed = opts.detailed
	popts.Threshold = opts.threshold

	runner, err := c.newRunner(ctx, opts.graph.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	logger.Debug("pipeline complete",
		"hash", result.ModelHash[:12],
		"analyze", result.Stats.AnalyzeTime,
		"render", result.Stats.RenderTime)

	paths, err := writeArtifacts(result.Artifacts, basePath(opts.output, input), input)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	printStats(result.Stats.VertexCount, result.Stats.EdgeCount, result.CacheInfo.AnalyzeHit && result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes each artifact to base.<format> in a stable order and
// returns the written paths. An artifact whose path would be input is written
// to base.report.<format> instead.
func writeArtifacts(artifacts map[string][]byte, base, input string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := fmt.Sprintf("%s.%s", base, f)
		if filepath.Clean(path) == filepath.Clean(input) {
			path = fmt.Sprintf("%s.report.%s", base, f)
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeStorage, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
