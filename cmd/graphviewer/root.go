package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/config"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
)

// rootOptions are the flags shared by every subcommand. Set flags override
// the configuration file.
type rootOptions struct {
	configPath string
	source     string
	direction  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "graphviewer",
		Short:         "Explore large graphs through communities",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `graphviewer loads a JSON graph document and explores it from a start
node, folding neighbourhoods into communities whenever the visible node
budget is exceeded.`,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "graph document (.json or .json.sz)")
	cmd.PersistentFlags().StringVar(&opts.direction, "direction", "", "edge direction to follow: outbound or any")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(newServeCmd(opts), newTUICmd(opts), newCommunitiesCmd(opts))
	return cmd
}

// load reads the configuration file, if any, and applies flag overrides.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.File = o.source
	}
	if flags.Changed("direction") {
		cfg.Source.Direction = o.direction
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViewer builds a viewer from cfg. reg may be nil.
func newViewer(cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (*viewer.GraphViewer, error) {
	opts := []viewer.Option{viewer.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, viewer.WithMetrics(reg))
	}
	if cfg.Server.TickInterval > 0 {
		opts = append(opts, viewer.WithTickInterval(cfg.Server.TickInterval))
	}
	v, err := viewer.New(cfg.Factory(logger), cfg.ViewerConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create viewer: %w", err)
	}
	return v, nil
}

// loadStart loads the start node on the running loop and waits for it.
func loadStart(ctx context.Context, v *viewer.GraphViewer, id string) error {
	type outcome struct {
		res adapter.LoadResult
		err error
	}
	ch := make(chan outcome, 1)
	err := v.Do(func() {
		cb := func(res adapter.LoadResult, err error) { ch <- outcome{res, err} }
		if id == "" {
			v.LoadGraphWithRandomStart(cb)
			return
		}
		v.LoadGraph(id, cb)
	})
	if err != nil {
		return err
	}
	select {
	case out := <-ch:
		if out.err != nil {
			return out.err
		}
		if out.res.NotFound() {
			return fmt.Errorf("start node %q not found", id)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
