package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/ultravioletrs/cube-docs/internal/linkcheck"
)

// LinksCmd implements the 'links' command.
type LinksCmd struct {
	Format string `short:"f" help:"Output format" enum:"json,text" default:"text"`
}

func (l *LinksCmd) Run(g *Global, root *CLI) error {
	res, runErr := root.runOnce(context.Background(), nil)
	if res == nil || res.Links == nil {
		return runErr
	}

	if err := writeFindings(g, res.Links, l.Format); err != nil {
		return err
	}
	return runErr
}

func writeFindings(g *Global, rep *linkcheck.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SCOPE\tSOURCE\tLINE\tDESTINATION\tREASON")
	for _, f := range append(append([]linkcheck.Finding{}, rep.Navigation...), rep.Prose...) {
		line := "-"
		if f.Line > 0 {
			line = fmt.Sprint(f.Line)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Scope, f.Source, line, f.Destination, f.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.Out, "%d links checked, %d broken\n", rep.Checked, rep.Count())
	return err
}
