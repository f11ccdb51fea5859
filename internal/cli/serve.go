package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/matchkey/internal/adapters/http/api"
	"github.com/okian/matchkey/internal/adapters/http/site"
	"github.com/okian/matchkey/internal/adapters/http/swagger"
	"github.com/okian/matchkey/pkg/logger"
	"github.com/okian/matchkey/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the browser front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				e.cfg.Addr = addr
			}
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", e.cfg.Addr)
			if err != nil {
				return err
			}
			return e.serve(ctx, ln)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides addr from config)")
	return cmd
}

// serve runs the HTTP server on ln until ctx is cancelled or the server
// fails, then shuts down gracefully.
func (e *env) serve(ctx context.Context, ln net.Listener) error {
	log := e.log.Named("http")

	svc, err := e.newService(ctx)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer svc.Close()

	srv := &http.Server{
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", ln.Addr().String()),
			logger.String("salt_id", svc.SaltID()),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "server shutdown failed", logger.Error(err))
			return err
		}
		log.Info(ctx, "server stopped")
		return nil
	})
	return g.Wait()
}

// newMux registers the front end, the OpenAPI document and the API.
func newMux(ctx context.Context, deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(deps).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater updates system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
