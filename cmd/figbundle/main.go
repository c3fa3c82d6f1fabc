package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/figbundle/cmd/figbundle/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Build   commands.BuildCmd `cmd:"" help:"Compile the plugin and rewrite the manifest into the output directory"`
		Watch   commands.WatchCmd `cmd:"" help:"Rebuild whenever the plugin source or manifest changes"`
		Debug   bool              `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Description("Bundle a Figma plugin and its manifest."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
