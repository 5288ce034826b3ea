package commands

import (
	"context"
	"errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/ultravioletrs/cube-docs/internal/build"
	"github.com/ultravioletrs/cube-docs/internal/config"
	"github.com/ultravioletrs/cube-docs/internal/history"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
	"github.com/ultravioletrs/cube-docs/internal/metrics"
	"github.com/ultravioletrs/cube-docs/internal/report"
	"github.com/ultravioletrs/cube-docs/internal/retry"
)

// reporting returns the sink settings: flags win over the configuration.
func (c *CLI) reporting(cfg *config.SiteConfig) config.ReportingConfig {
	var r config.ReportingConfig
	if cfg != nil {
		r = cfg.Reporting
	}
	if c.HistoryDB != "" {
		r.HistoryDB = c.HistoryDB
	}
	if c.MetricsFile != "" {
		r.MetricsFile = c.MetricsFile
	}
	if c.NATSURL != "" {
		r.NATSURL = c.NATSURL
	}
	if c.NATSSubject != "" {
		r.NATSSubject = c.NATSSubject
	}
	if r.NATSURL != "" && r.NATSSubject == "" {
		r.NATSSubject = config.DefaultNATSSubject
	}
	return r
}

// request builds the run request from the global flags.
func (c *CLI) request(cfg *config.SiteConfig) build.Request {
	return build.Request{
		ConfigPath:   c.Config,
		Config:       cfg,
		DocsDir:      c.Docs,
		SidebarsPath: c.Sidebars,
		Version:      c.VersionName,
		Revision:     c.Revision,
		OutputDir:    c.Output,
	}
}

// pipeline is a Runner wired to the configured sinks.
type pipeline struct {
	runner      *build.Runner
	registry    *prom.Registry
	metricsFile string
	closers     []func() error
}

// newPipeline opens the sinks. forceMetrics registers the Prometheus
// recorder even without a textfile, for the watch command's endpoint.
func newPipeline(r config.ReportingConfig, forceMetrics bool) (*pipeline, error) {
	p := &pipeline{runner: build.NewRunner(), metricsFile: r.MetricsFile}

	if forceMetrics || r.MetricsFile != "" {
		p.registry = prom.NewRegistry()
		p.runner.WithRecorder(metrics.NewPrometheusRecorder(p.registry))
	}

	if r.HistoryDB != "" {
		store, err := history.NewSQLiteStore(r.HistoryDB)
		if err != nil {
			return nil, err
		}
		p.runner.WithHistory(store)
		p.closers = append(p.closers, store.Close)
	}

	if r.NATSURL != "" {
		pub, err := report.NewNATSPublisher(r.NATSURL, r.NATSSubject)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		p.runner.WithPublisher(pub).WithRetryPolicy(retry.FromReporting(r))
		p.closers = append(p.closers, pub.Close)
	}
	return p, nil
}

// Run executes one run and refreshes the metrics textfile.
func (p *pipeline) Run(ctx context.Context, req build.Request) (*build.Result, error) {
	res, err := p.runner.Run(ctx, req)
	if p.metricsFile != "" && p.registry != nil {
		if werr := metrics.WriteTextfile(p.metricsFile, p.registry); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(p.metricsFile), logfields.Error(werr))
		}
	}
	return res, err
}

// Close releases the sinks.
func (p *pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	return errors.Join(errs...)
}

// runOnce loads the configuration, runs the pipeline once and closes it.
// A configuration that fails to load still produces a run: the sinks named
// by flags record it, and the runner's config stage reports the error.
func (c *CLI) runOnce(ctx context.Context, mutate func(*build.Request)) (*build.Result, error) {
	cfg, cfgErr := config.Load(c.Config)
	if cfgErr == nil {
		c.applyLogging(cfg)
	}

	p, err := newPipeline(c.reporting(cfg), false)
	if err != nil {
		if cfgErr != nil {
			slog.Warn("Failed to open reporting sinks", logfields.Error(err))
			return nil, cfgErr
		}
		return nil, err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil {
			slog.Warn("Failed to close reporting sinks", logfields.Error(cerr))
		}
	}()

	req := c.request(cfg)
	if mutate != nil {
		mutate(&req)
	}
	return p.Run(ctx, req)
}
