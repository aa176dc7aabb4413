package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildcache/cmd/buildcache/commands"
	"git.home.luguber.info/inful/buildcache/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("buildcache"),
		kong.Description("Instant execution cache for build task graphs."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	global := &commands.Global{}
	ctx.FatalIfErrorf(ctx.Run(global, &cli))
}
