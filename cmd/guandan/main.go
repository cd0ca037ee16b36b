package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the Guandan server"`
	Bot      BotCmd           `cmd:"" help:"Connect built-in bot clients to a room"`
	Simulate SimulateCmd      `cmd:"" help:"Play seeded bot-vs-bot matches in process"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("guandan"),
		kong.Description("Authoritative server core for four-player partnership Guandan"),
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
