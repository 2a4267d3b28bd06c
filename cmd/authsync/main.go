package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/authsync/cmd/authsync/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Apply   commands.ApplyCmd `cmd:"" help:"Apply a change batch fixture to a content store"`
		Debug   bool              `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
