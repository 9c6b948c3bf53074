package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/presentation/tui"
	httpadapter "github.com/aretw0/pagecraft/pkg/adapters/http"
	"github.com/aretw0/pagecraft/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long: `Starts an editor exposing a JSON API over HTTP, a websocket event
stream on /events and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		ed, err := newEditor(ctx, cfg, logger, pagecraft.WithMetrics(metrics))
		if err != nil {
			return err
		}

		handler, err := httpadapter.NewServer(ctx, ed,
			httpadapter.WithLogger(logger),
			httpadapter.WithGatherer(reg),
			httpadapter.WithVersion(pagecraft.Version),
		)
		if err != nil {
			_ = ed.Close()
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(os.Stdout)
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("pagecraft server listening", "address", addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			handler.Close()
			_ = ed.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				_ = srv.Close()
			}
			handler.Close()
			if err := ed.SaveAll(shutdownCtx); err != nil {
				logger.Error("saving open pages failed", "error", err)
			}
			logger.Info("pagecraft server stopped")
			return ed.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
