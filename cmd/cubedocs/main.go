package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ultravioletrs/cube-docs/cmd/cubedocs/commands"
	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("cubedocs"),
		kong.Description("Validate the Cube AI documentation site descriptors"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
