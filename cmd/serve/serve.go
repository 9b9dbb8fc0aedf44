package serve

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/resonatehq/console/cmd/config"
	"github.com/resonatehq/console/internal/app/console"
	"github.com/resonatehq/console/internal/app/monitor"
	"github.com/resonatehq/console/internal/app/web"
	"github.com/spf13/cobra"
)

func NewCmd(cfg *config.Config, c *console.Console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Serve(cfg, c)
		},
	}

	return cmd
}

func Serve(cfg *config.Config, c *console.Console) error {
	// auth
	var auth *web.JwtAuthenticator
	if cfg.Web.Auth.PublicKey != "" {
		pem, err := os.ReadFile(cfg.Web.Auth.PublicKey)
		if err != nil {
			return fmt.Errorf("failed to read public key: %w", err)
		}

		auth, err = web.NewJWTAuthenticator(pem)
		if err != nil {
			return err
		}
	}

	// web
	w, err := web.New(&cfg.Web, c.Store, c.Users, c.States, auth)
	if err != nil {
		return err
	}

	// monitor
	var m *monitor.Monitor
	if cfg.Monitor.Enable {
		m, err = monitor.New(&cfg.Monitor, map[string]monitor.Prober{
			"node":   c.Users,
			"python": c.States,
		})
		if err != nil {
			return err
		}
		m.Start()
	}

	// metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	go serveMetrics(metricsServer, 5*time.Second)

	errors := make(chan error, 1)
	go w.Start(errors)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	// halt until we get a shutdown signal or an error
	// occurs, whichever happens first
	select {
	case s := <-sig:
		slog.Info("shutdown signal received, shutting down", "signal", s)
	case err := <-errors:
		slog.Error("web server error received, shutting down", "error", err)
	}

	if m != nil {
		m.Stop()
	}

	if err := w.Stop(); err != nil {
		slog.Error("failed to stop web server", "error", err)
		return err
	}

	if err := metricsServer.Close(); err != nil {
		slog.Warn("error stopping metrics server", "error", err)
	}

	return nil
}

// serveMetrics restarts the metrics server after backoff until it is closed.
func serveMetrics(server *http.Server, backoff time.Duration) {
	for {
		slog.Info("starting metrics server", "addr", server.Addr)

		if err := server.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				return
			}

			slog.Error("restarting metrics server...", "error", err)
		}

		time.Sleep(backoff)
	}
}
