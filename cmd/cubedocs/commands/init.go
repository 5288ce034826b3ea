package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ultravioletrs/cube-docs/internal/config"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/site"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	sidebarsPath := root.Sidebars
	if sidebarsPath == "" {
		sidebarsPath = filepath.Join(filepath.Dir(root.Config), config.DefaultSidebarPath)
	}
	return RunInit(g, root.Config, sidebarsPath, i.Force)
}

// RunInit writes the example configuration and sidebars.
func RunInit(g *Global, configPath, sidebarsPath string, force bool) error {
	_, _ = fmt.Fprintf(g.Out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		return err
	}

	if _, err := os.Stat(sidebarsPath); err == nil && !force {
		return ferrors.ConfigError("sidebars file already exists (use --force to overwrite)").
			WithContext("path", sidebarsPath).
			Build()
	}
	_, _ = fmt.Fprintf(g.Out, "Writing sidebars to %s\n", sidebarsPath)
	if err := os.WriteFile(sidebarsPath, site.SidebarsYAML, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write sidebars file").
			WithContext("path", sidebarsPath).
			Build()
	}
	_, _ = fmt.Fprintln(g.Out, "Initialized successfully")
	return nil
}
