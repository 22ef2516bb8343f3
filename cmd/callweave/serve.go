package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/callweave/callweave"
	httpAdapter "github.com/callweave/callweave/internal/adapters/http"
	"github.com/callweave/callweave/internal/adapters/sim"
	"github.com/callweave/callweave/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Starts the callweave engine in server mode, exposing workflow storage and execution over a JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		port, _ := cmd.Flags().GetString("port")

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		adapter := sim.New(sim.WithLogger(logger))
		eng := newEngine(cmd, logger, adapter, callweave.WithLifecycleHooks(m.Hooks()))

		api := httpAdapter.NewHandler(eng,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(callweave.Version),
		)

		r := chi.NewRouter()
		r.Mount("/", api)
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: r,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown requested", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("server close failed", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
