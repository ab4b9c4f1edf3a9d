package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/pipeline"
)

// inspectOpts holds the flags of the inspect command.
type inspectOpts struct {
	graph  graphFlags
	vertex string
}

// inspectCommand creates the interactive inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := &inspectOpts{}

	cmd := &cobra.Command{
		Use:   "inspect [model-file]",
		Short: "Browse vertices by risk, with contributions and paths",
		Long: `Inspect opens an interactive view listing every vertex ranked by total risk.
Selecting a vertex shows how much each upstream source contributes to its
risk and the most probable propagation paths.

With --vertex, the detail of a single vertex is printed instead.`,
		Example: `  riskflow inspect system.json
  riskflow inspect system.json --vertex api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], opts)
		},
		ValidArgsFunction: completeModelFile,
	}

	opts.graph.register(cmd)
	cmd.Flags().StringVar(&opts.vertex, "vertex", "", "print the detail of one vertex and exit")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, opts *inspectOpts) error {
	m, err := model.ReadFile(input)
	if err != nil {
		return err
	}
	popts, err := opts.graph.options(c, m)
	if err != nil {
		return err
	}

	load := func() (*analysis, error) {
		report, g, err := pipeline.Analyze(m, popts.GraphOptions())
		if err != nil {
			return nil, err
		}
		return &analysis{report: report, graph: g}, nil
	}

	if opts.vertex != "" {
		res, err := load()
		if err != nil {
			return err
		}
		v, ok := res.report.Lookup(opts.vertex)
		if !ok {
			return errors.New(errors.ErrCodeUnknownHandle, "vertex %q not in model", opts.vertex)
		}
		fmt.Print(vertexDetail(v, res.graph))
		return nil
	}

	name := m.Name
	if name == "" {
		name = input
	}
	final, err := tea.NewProgram(newInspectModel(name, load), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return err
	}
	if im, ok := final.(InspectModel); ok && im.Err() != nil {
		return im.Err()
	}
	return nil
}
