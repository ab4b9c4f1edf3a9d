package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/pipeline"
)

// graphFlags are the engine settings shared by analyze, render and inspect.
// Zero values defer to the config file.
type graphFlags struct {
	capacity      int
	defaultRisk   float64
	defaultWeight float64
	noCache       bool
	refresh       bool
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "maximum number of vertices (0: unbounded)")
	cmd.Flags().Float64Var(&f.defaultRisk, "default-risk", 0, "intrinsic risk of vertices without one")
	cmd.Flags().Float64Var(&f.defaultWeight, "default-weight", 0, "weight of edges without one")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options merges the flags over the configured defaults.
func (f *graphFlags) options(c *CLI, m *model.Model) (pipeline.Options, error) {
	opts := c.pipelineOptions(m)
	if f.capacity != 0 {
		if f.capacity < 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "capacity must not be negative")
		}
		opts.Capacity = f.capacity
	}
	if f.defaultRisk != 0 {
		if err := errors.ValidateRisk(f.defaultRisk); err != nil {
			return opts, err
		}
		opts.DefaultRisk = f.defaultRisk
	}
	if f.defaultWeight != 0 {
		if err := errors.ValidateWeight(f.defaultWeight); err != nil {
			return opts, err
		}
		opts.DefaultWeight = f.defaultWeight
	}
	opts.Refresh = f.refresh
	return opts, nil
}
