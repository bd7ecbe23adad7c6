package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphviewer/pkg/api"
	"github.com/dd0wney/cluso-graphviewer/pkg/api/middleware"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
	"github.com/dd0wney/cluso-graphviewer/pkg/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr    string
		start   string
		origins []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer over HTTP and GraphQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			logger := cfg.Logger()
			reg := metrics.NewRegistry()

			v, err := newViewer(cfg, logger, reg)
			if err != nil {
				return err
			}
			defer v.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			loopErr := make(chan error, 1)
			go func() { loopErr <- v.Run(ctx) }()

			if start != "" {
				if err := loadStart(ctx, v, start); err != nil {
					logger.Warn("start node not loaded", logging.NodeID(start), logging.Error(err))
				}
			}

			apiServer, err := api.NewServer(v,
				api.WithLogger(logger),
				api.WithMetrics(reg),
				api.WithVersion(version),
				api.WithCORS(middleware.CORSConfig{AllowedOrigins: origins}),
			)
			if err != nil {
				return err
			}
			gs := server.NewGracefulServer(cfg.Server.Addr, apiServer.Handler(), server.Options{
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, logger)

			if err := gs.Run(ctx); err != nil {
				return err
			}
			if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&start, "start", "", "node to load before serving")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origins")
	return cmd
}
