// Command filewatcher watches a directory subtree and keeps an in-memory
// mirror of it consistent with the filesystem, normalizing raw OS events
// and applying them to a directory tree model.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/1Serg777/file-watcher/config"
	"github.com/1Serg777/file-watcher/consumer"
	"github.com/1Serg777/file-watcher/metrics"
	"github.com/1Serg777/file-watcher/tree"
	"github.com/1Serg777/file-watcher/watch"
)

var (
	configPath   string
	sortField    string
	sortDir      string
	moveWindow   time.Duration
	metricsAddr  string
	tickInterval time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filewatcher <path>",
		Short: "Mirror a directory subtree in memory, kept live by OS change notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to an optional YAML configuration file")
	cmd.Flags().StringVar(&sortField, "sort-field", "", "sibling sort field: alphabetical|last_write_time (overrides config)")
	cmd.Flags().StringVar(&sortDir, "sort-direction", "", "sibling sort direction: ascending|descending (overrides config)")
	cmd.Flags().DurationVar(&moveWindow, "move-window", 0, "MOVED-synthesis window, e.g. 100ms (overrides config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for the /metrics and /healthz endpoints, e.g. 127.0.0.1:9090 (overrides config)")
	cmd.Flags().DurationVar(&tickInterval, "tick-interval", 50*time.Millisecond, "how often the consumer drains normalized events into the tree")

	return cmd
}

func run(ctx context.Context, watchPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if sortField != "" {
		cfg.Sort.Field = sortField
	}
	if sortDir != "" {
		cfg.Sort.Direction = sortDir
	}
	if moveWindow != 0 {
		cfg.MoveWindow = moveWindow
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	runID := uuid.New().String()
	log := slog.Default().With("run_id", runID)

	assetTypes, err := cfg.AssetTypeTable()
	if err != nil {
		return fmt.Errorf("building asset type table: %w", err)
	}
	sortType, err := cfg.SortType()
	if err != nil {
		return fmt.Errorf("parsing sort order: %w", err)
	}

	var reg *prometheus.Registry
	if cfg.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
	}
	m := metrics.New(reg)

	t := tree.New(assetTypes, m)
	t.SetDefaultSortType(sortType)

	onWarning := func(err error) {
		log.Warn("recoverable watch error", "error", err)
	}
	w := watch.New(cfg.MoveWindow, onWarning, m)

	c := consumer.New(w, t, watchPathName(watchPath), log)

	if err := t.BuildRootTree(watchPath); err != nil {
		return fmt.Errorf("building initial tree for %q: %w", watchPath, err)
	}

	if err := w.StartWatching(watchPath); err != nil {
		switch {
		case errors.Is(err, watch.ErrPathNotFound):
			return fmt.Errorf("%q does not exist: %w", watchPath, err)
		case errors.Is(err, watch.ErrAccessDenied):
			return fmt.Errorf("access denied watching %q: %w", watchPath, err)
		default:
			return fmt.Errorf("starting watch on %q: %w", watchPath, err)
		}
	}
	log.Info("watching", "path", watchPath, "move_window", cfg.MoveWindow, "sort", cfg.Sort)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runConsumeLoop(gctx, c, tickInterval)
	})

	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr, reg)
		g.Go(func() error {
			return serveUntilShutdown(gctx, srv)
		})
	}

	<-gctx.Done()
	w.StopWatching()
	log.Info("shutting down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runConsumeLoop ticks the consumer on interval until ctx is done, draining
// every normalized event queued by the watcher into the tree each tick.
func runConsumeLoop(ctx context.Context, c *consumer.Consumer, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Tick()
			return nil
		case <-ticker.C:
			c.Tick()
		}
	}
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return &http.Server{Addr: addr, Handler: r}
}

func serveUntilShutdown(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func watchPathName(watchPath string) string {
	return filepath.Base(filepath.Clean(watchPath))
}
