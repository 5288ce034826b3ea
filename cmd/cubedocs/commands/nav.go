package commands

import (
	"context"

	"github.com/ultravioletrs/cube-docs/internal/build"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/nav"
)

// NavCmd implements the 'nav' command.
type NavCmd struct {
	Sidebar string `short:"s" help:"Print only this sidebar"`
	Format  string `short:"f" help:"Output format" enum:"json,text" default:"text"`
}

func (n *NavCmd) Run(g *Global, root *CLI) error {
	res, err := root.runOnce(context.Background(), func(req *build.Request) {
		req.SkipLinks = true
	})
	if err != nil {
		return err
	}

	navs := res.Navigation
	if n.Sidebar != "" {
		navs = nil
		for _, nv := range res.Navigation {
			if nv.Sidebar == n.Sidebar {
				navs = append(navs, nv)
			}
		}
		if len(navs) == 0 {
			return ferrors.ValidationError("unknown sidebar").
				WithContext("sidebar", n.Sidebar).
				WithContext("sidebars", res.Sidebars.Names()).
				Build()
		}
	}
	return nav.Write(g.Out, navs, nav.Format(n.Format))
}
