package commands

import (
	"context"
	"fmt"

	"github.com/ultravioletrs/cube-docs/internal/build"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	SkipLinks bool `name:"skip-links" help:"Skip navigation and prose link checks"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	res, err := root.runOnce(context.Background(), func(req *build.Request) {
		req.SkipLinks = v.SkipLinks
	})
	if err != nil {
		return err
	}
	printSummary(g, res)
	return nil
}

func printSummary(g *Global, res *build.Result) {
	_, _ = fmt.Fprintf(g.Out, "Validation %s: %d documents, %d sidebars, %d warnings (run %s)\n",
		res.Status, res.Documents.Len(), len(res.Sidebars), res.WarningCount(), res.RunID)
	for _, p := range res.Written {
		_, _ = fmt.Fprintf(g.Out, "Wrote %s\n", p)
	}
}
