package cli

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/riskflow/pkg/api"
	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/observability/prom"
	"github.com/matzehuels/riskflow/pkg/session"
	"github.com/matzehuels/riskflow/pkg/store"
)

// sweepInterval is how often expired sessions are removed.
const sweepInterval = time.Minute

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr        string
	sessionTTL  time.Duration
	maxSessions int
	store       string
	noStore     bool
	noCache     bool
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for live risk graphs",
		Long: `Serve exposes session-scoped risk graphs over HTTP. Clients create a graph,
mutate vertices and edges, and query risk, paths and renderings. Graphs can be
saved to and loaded from the configured snapshot store. Prometheus metrics are
served on /metrics.`,
		Example: `  riskflow serve --addr :8090
  riskflow serve --store mongo --session-ttl 30m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8090)")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "idle time after which a graph session expires")
	cmd.Flags().IntVar(&opts.maxSessions, "max-sessions", 0, "maximum number of live graph sessions")
	cmd.Flags().StringVar(&opts.store, "store", "", "snapshot store: file, memory, mongo")
	_ = cmd.RegisterFlagCompletionFunc("store", completeStoreBackends)
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "disable snapshot routes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching of /v1/analyze results")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg := c.Config.Server
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.sessionTTL != 0 {
		cfg.SessionTTL = opts.sessionTTL
	}
	if opts.maxSessions != 0 {
		cfg.MaxSessions = opts.maxSessions
	}
	if cfg.SessionTTL < 0 || cfg.MaxSessions < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "session ttl and max sessions must not be negative")
	}
	if opts.store != "" {
		c.Config.Store.Backend = opts.store
		if err := c.Config.validate(); err != nil {
			return err
		}
	}

	prom.New(prometheus.DefaultRegisterer).Install()

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var st store.Store
	if !opts.noStore {
		if st, err = c.newStore(ctx); err != nil {
			return err
		}
		defer st.Close()
		logger.Info("snapshot store ready", "backend", c.Config.Store.Backend)
	}

	graphOpts := c.pipelineOptions(nil)
	sessions := session.NewManager(session.Options{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		Graph:       graphOpts.GraphOptions(),
	})
	go sessions.Run(ctx, sweepInterval, func(n int) {
		logger.Debug("expired sessions removed", "count", n)
	})

	srv := api.New(api.Config{
		Addr:     cfg.Addr,
		Sessions: sessions,
		Store:    st,
		Runner:   runner,
		Logger:   logger,
	})
	return srv.ListenAndServe(ctx)
}
