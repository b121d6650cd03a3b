package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"upside-down-research.com/oss/rtsearch/internal/commands"
)

var CLI struct {
	Solve    commands.SolveCommand    `cmd:"" help:"Run a real-time search on a problem instance" default:"withargs"`
	Validate commands.ValidateCommand `cmd:"" help:"Validate a problem instance file"`
	Config   commands.ConfigCommand   `cmd:"" help:"Manage configuration"`
	Doctor   commands.DoctorCommand   `cmd:"" help:"Run system diagnostics"`

	Debug bool `help:"Enable debug logging"`
}

func main() {
	log.SetLevel(log.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("rtsearch"),
		kong.Description("Real-time heuristic search with meta-reasoning commitment.\n\nInterleaves bounded lookahead with acting under a per-decision expansion budget."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: false,
			Summary: true,
		}),
	)

	if CLI.Debug {
		log.SetLevel(log.DebugLevel)
	}

	err := ctx.Run()
	if err != nil {
		log.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
