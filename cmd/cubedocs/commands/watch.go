package commands

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

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
	"github.com/ultravioletrs/cube-docs/internal/metrics"
	"github.com/ultravioletrs/cube-docs/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval    time.Duration `help:"Also revalidate at this interval (0 disables)" default:"0s"`
	Debounce    time.Duration `help:"Quiet period after a change before revalidating" default:"500ms"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9102)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, g, root)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, root *CLI) error {
	if root.Revision != "" {
		return ferrors.ConfigError("watch reads the working tree and cannot be combined with --revision").
			WithField("revision").
			Build()
	}

	// Sinks and watched paths come from the configuration at startup. Every
	// run reloads the configuration itself.
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	root.applyLogging(cfg)

	p, err := newPipeline(root.reporting(cfg), w.MetricsAddr != "")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			slog.Warn("Failed to close reporting sinks", logfields.Error(cerr))
		}
	}()

	if w.MetricsAddr != "" {
		stop := serveMetrics(w.MetricsAddr, p)
		defer stop()
	}

	req := root.request(nil)
	queue := watch.NewQueue(func(ctx context.Context, reason string) {
		slog.Info("Revalidating", slog.String("reason", reason))
		res, err := p.Run(ctx, req)
		if err != nil {
			_, _ = fmt.Fprintf(g.Out, "Validation failed: %v\n", err)
			return
		}
		printSummary(g, res)
	})

	watcher, err := watch.NewWatcher(w.Debounce)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := addWatchPaths(watcher, root, cfg); err != nil {
		return err
	}

	if w.Interval > 0 {
		sched, err := watch.NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.Every(w.Interval, "revalidate", func() { queue.Request("schedule") }); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	go watcher.Run(ctx, func(path string) { queue.Request("change " + path) })
	queue.Request("startup")

	slog.Info("Watching for changes", logfields.Path(filepath.Dir(root.Config)), slog.Duration("interval", w.Interval))
	queue.Run(ctx)
	slog.Info("Watch stopped")
	return nil
}

// addWatchPaths watches the descriptors and every content tree of the site.
func addWatchPaths(w *watch.Watcher, root *CLI, cfg *config.SiteConfig) error {
	siteRoot := filepath.Dir(root.Config)
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(siteRoot, p)
	}

	// Run outputs must not trigger further runs.
	rep := root.reporting(cfg)
	for _, p := range []string{root.Output, rep.HistoryDB, rep.MetricsFile} {
		if p != "" {
			w.Ignore(resolve(p))
		}
	}
	if err := w.Add(siteRoot, false); err != nil {
		return err
	}

	sidebars := cfg.Docs.SidebarPath
	if root.Sidebars != "" {
		sidebars = root.Sidebars
	}
	if err := w.Add(resolve(sidebars), false); err != nil {
		return err
	}

	docs := cfg.Docs.Path
	if root.Docs != "" {
		docs = root.Docs
	}
	if err := w.Add(resolve(docs), true); err != nil {
		return err
	}

	// Versioned trees are optional.
	for _, dir := range []string{cfg.Docs.VersionedSidebars, cfg.Docs.VersionedDocs} {
		p := resolve(dir)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := w.Add(p, true); err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(addr string, p *pipeline) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(p.registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Serving metrics", logfields.URL("http://"+addr+"/metrics"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
