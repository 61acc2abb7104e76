package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/api"
	"github.com/dgallion1/docrank/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the docrank HTTP API.

Endpoints other than /health require "Authorization: Bearer $DOCRANK_API_KEY".
Collections are processed asynchronously by a worker pool sized by
WORKER_COUNT; poll /api/collections/{id}/status for progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log, err := newLogger()
		if err != nil {
			return err
		}

		cfg := loadConfig()
		if err := cfg.Validate(); err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}

		analyzer, err := newAnalyzer(cfg, log)
		if err != nil {
			return err
		}

		orch := pipeline.NewOrchestrator(cfg, analyzer, pipeline.NewStats(cfg.JobTTL), log)
		orch.Start(ctx)

		srv := api.NewServer(orch, analyzer, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docrank",
			"port", cfg.Port,
			"workers", cfg.WorkerCount,
			"personas", analyzer.Scorer().Table().Labels(),
		)
		err = httpServer.ListenAndServe()
		orch.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}
