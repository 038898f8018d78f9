package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	latticehttp "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/spec"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Exposes the agent catalog, linter, and run execution over a JSON
REST API, with Prometheus metrics at /metrics. Agents and run logs are
stored on the filesystem by default; pass --redis to share the agent
catalog across hosts.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(cmd); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func serve(cmd *cobra.Command) error {
	port, _ := cmd.Flags().GetString("port")
	level, _ := cmd.Flags().GetString("log-level")
	agentsDir, _ := cmd.Flags().GetString("agents-dir")
	redisAddr, _ := cmd.Flags().GetString("redis")

	logger := logging.NewJSON(logging.ParseLevel(level))

	runs, err := openRunStore(cmd)
	if err != nil {
		return err
	}

	var manifests spec.Store = file.NewManifestStore(agentsDir)
	if redisAddr != "" {
		store := redis.New(redisAddr, "", 0)
		defer store.Close()
		manifests = store
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	eng := lattice.New(
		lattice.WithRunStore(runs),
		lattice.WithManifestStore(manifests),
		lattice.WithLifecycleHooks(metrics.Hooks()),
		lattice.WithLogger(logger),
	)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: latticehttp.NewHandler(eng, logger),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown incomplete", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to stop server: %w", err)
			}
		}
		logger.Info("server stopped")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for the shared agent catalog")
	addMaskFlag(serveCmd)
}
