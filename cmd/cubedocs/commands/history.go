package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of runs to list" default:"20"`
	ID    string `arg:"" optional:"" help:"Print the manifest of this run"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	// The configuration only supplies reporting.history_db here, so a broken
	// site config does not hide the history.
	var cfg *config.SiteConfig
	if root.HistoryDB == "" {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	dbPath := root.reporting(cfg).HistoryDB
	if dbPath == "" {
		return ferrors.ConfigError("no history database configured (use --history-db or reporting.history_db)").
			WithField("reporting.history_db").
			Build()
	}

	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.ID != "" {
		return h.show(ctx, g, store)
	}
	return h.list(ctx, g, store)
}

func (h *HistoryCmd) show(ctx context.Context, g *Global, store history.Store) error {
	run, err := store.Get(ctx, h.ID)
	if errors.Is(err, history.ErrNotFound) {
		return ferrors.ValidationError("unknown run").WithContext("run_id", h.ID).Build()
	}
	if err != nil {
		return err
	}
	if len(run.Manifest) == 0 {
		_, err = fmt.Fprintf(g.Out, "Run %s has no manifest\n", run.ID)
		return err
	}
	_, err = fmt.Fprintf(g.Out, "%s\n", run.Manifest)
	return err
}

func (h *HistoryCmd) list(ctx context.Context, g *Global, store history.Store) error {
	runs, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err = fmt.Fprintln(g.Out, "No runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tDURATION\tDOCS\tNAV\tPROSE\tVERSION\tREVISION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Format(time.RFC3339),
			r.Status,
			r.Duration.Round(time.Millisecond),
			r.Documents,
			r.NavFindings,
			r.ProseFindings,
			dash(r.Version),
			dash(r.Revision))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
