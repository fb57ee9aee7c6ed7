package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/questline"
	httpAdapter "github.com/aretw0/questline/pkg/adapters/http"
	"github.com/aretw0/questline/pkg/adapters/ws"
	"github.com/aretw0/questline/pkg/observability"
	"github.com/aretw0/questline/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [storyline]",
	Short: "Start the HTTP server",
	Long: `Serves the storyline over HTTP. Every session is an independent game whose answers
live in its own backend namespace. Lifecycle events stream over SSE, players share
presence over /ws and Prometheus metrics are exposed on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		logger := cfg.Logger()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng, err := loadEngine(cfg, logger)
		if err != nil {
			return err
		}
		st, err := buildStack(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		handler, mgr, err := newServeHandler(eng, st, reg, cfg.Radius(), logger)
		if err != nil {
			return err
		}
		defer mgr.Close(context.Background())

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting questline server", "addr", srv.Addr, "storyline", cfg.Storyline, "backend", cfg.AnswerBackend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			logger.Info("questline server stopped gracefully")
			return nil
		}
	},
}

// newServeHandler assembles the API, the presence hub and the metrics endpoint.
func newServeHandler(eng *questline.Engine, st *stack, reg *prometheus.Registry, radius float64, logger *slog.Logger) (http.Handler, *session.Manager, error) {
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}
	logHooks := observability.LoggingHooks(logger)

	var api *httpAdapter.Server
	mgr := session.NewManager(eng.Factory(func(id string) []session.GameOption {
		opts := []session.GameOption{
			session.WithNamespace(id),
			session.WithAnswerBackend(st.Backend),
			session.WithRadius(radius),
			session.WithHooks(observability.Combine(metrics.Hooks(), logHooks, api.Streams.Hooks(id))),
		}
		if st.Recorder != nil {
			opts = append(opts, session.WithTelemetry(st.Recorder))
		}
		return opts
	}), session.WithLogger(logger))
	api = httpAdapter.NewServer(mgr, httpAdapter.WithLogger(logger))

	hub := ws.NewHub(ws.WithSessions(mgr), ws.WithLogger(logger))

	r := chi.NewRouter()
	r.Handle("/metrics", observability.Handler(reg))
	r.Handle("/ws", hub)
	r.Mount("/", httpAdapter.NewHandler(api))
	return r, mgr, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default $QUESTLINE_PORT or 8080)")
}
