package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" help:"Play one game against three bots in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Run bot-only games and report outcome distributions"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tonk"),
		kong.Description("Four-seat Tonk against bots, without the server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
