package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/pipeline"
)

// analyzeOpts holds the flags of the analyze command.
type analyzeOpts struct {
	graph     graphFlags
	threshold float64
	top       int
	output    string
}

// analyzeCommand creates the analyze command for computing risk.
func (c *CLI) analyzeCommand() *cobra.Command {
	opts := &analyzeOpts{}

	cmd := &cobra.Command{
		Use:   "analyze [model-file]",
		Short: "Compute the total failure risk of every component",
		Long: `Analyze reads a model file (JSON or TOML), builds the propagation graph and
prints every vertex ranked by total risk, with its intrinsic risk and the
source contributing most to it.`,
		Example: `  # Rank all components
  riskflow analyze system.json

  # Only components at or above 20% total risk
  riskflow analyze system.toml --threshold 0.2

  # Write the full report as JSON
  riskflow analyze system.json -o report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd, args[0], opts)
		},
		ValidArgsFunction: completeModelFile,
	}

	opts.graph.register(cmd)
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "only show vertices at or above this total risk")
	cmd.Flags().IntVar(&opts.top, "top", 0, "only show the N riskiest vertices (0: all)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON report to this file")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, input string, opts *analyzeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if opts.threshold < 0 || opts.threshold > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "threshold %v out of range [0,1]", opts.threshold)
	}
	if opts.top < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "top must not be negative")
	}

	m, err := model.ReadFile(input)
	if err != nil {
		return err
	}
	popts, err := opts.graph.options(c, m)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.graph.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	report, hit, err := runner.AnalyzeWithCacheInfo(ctx, popts)
	if err != nil {
		return err
	}
	prog.done("Analyzed", "vertices", len(report.Vertices), "cached", hit)

	rows := report.Ranked()
	if opts.threshold > 0 {
		rows = report.Above(opts.threshold)
	}
	if opts.top > 0 && len(rows) > opts.top {
		rows = rows[:opts.top]
	}

	name := report.Name
	if name == "" {
		name = input
	}
	fmt.Println(StyleTitle.Render(name))
	printStats(len(m.Vertices), len(m.Edges), hit)
	printNewline()
	if len(rows) == 0 {
		printInfo("No vertices at or above %.2f", opts.threshold)
	} else {
		fmt.Println(riskTable(rows, opts.threshold))
	}

	if opts.output != "" {
		data, err := pipeline.MarshalReport(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.output, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "write %s", opts.output)
		}
		printNewline()
		printSuccess("Report written")
		printFile(opts.output)
	}
	return nil
}
