package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/graph"
	"github.com/dshills/docstyle/internal/metrics"
	"github.com/dshills/docstyle/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP validation service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config and DOCSTYLE_LISTEN)")
	return cmd
}

func runServe(ctx context.Context, g *globalFlags, listen string) error {
	log, err := newLogger(g.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return exitError(exitInput, "%v", err)
	}

	m := metrics.New()
	gc, err := graph.New(cfg.Graph, graph.WithLogger(log), graph.WithObserver(m))
	if err != nil {
		return exitError(exitInput, "%v", err)
	}
	v, err := newValidator(cfg, log, validatorOpts{recorder: m, observer: m})
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Rules:          gc,
		Files:          gc,
		Status:         gc,
		Results:        gc,
		Site:           gc,
		Validator:      v,
		SiteURL:        cfg.Graph.SiteURL,
		Metrics:        m.Handler(),
		Log:            log,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	if cfg.Server.HealthListen != "" {
		health := server.Health(func() error {
			_, err := gc.Token()
			return err
		})
		hs := &http.Server{Addr: cfg.Server.HealthListen, Handler: health, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("health listener stopped", zap.Error(err))
			}
		}()
		defer func() { _ = hs.Close() }()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("docstyle starting",
		zap.String("version", version),
		zap.String("site", cfg.Graph.SiteURL),
		zap.Bool("ai", cfg.AIEnabled()))
	if err := srv.Run(ctx, cfg.Server.Listen); err != nil {
		return exitError(exitExternal, "server: %v", err)
	}
	return nil
}
