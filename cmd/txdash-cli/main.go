/*Operator commands for the transaction dashboard*/
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"txdash/internal/cli"
	"txdash/internal/config"
	"txdash/internal/log"
)

// app is bound into every command's Run method
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
}

// commands available
var commands struct {
	Seed    seedCmd    `cmd:"" help:"Import a JSON dataset into the SQLite backend."`
	List    listCmd    `cmd:"" help:"Print one page of the transaction listing."`
	Report  reportCmd  `cmd:"" help:"Print a monthly report."`
	Publish publishCmd `cmd:"" help:"Publish all twelve monthly combined reports to AMQP once."`
	Watch   watchCmd   `cmd:"" help:"Print monthly report messages as they arrive on the AMQP queue."`
}

func main() {
	cli.LoadEnvFile()
	kctx := kong.Parse(&commands,
		kong.Name("txdash-cli"),
		kong.Description("Transaction dashboard operator tool."),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	logger := cli.NewLogger(cfg, os.Stderr, log.ComponentCLI)
	log.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		kctx.Fatalf("%v", err)
	}

	err := kctx.Run(&app{cfg: cfg, logger: logger, out: os.Stdout})
	kctx.FatalIfErrorf(err)
}
