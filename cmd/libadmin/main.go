package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Serve serveCmd `cmd:"" default:"withargs" help:"Run the library admin server."`
	Seed  seedCmd  `cmd:"" help:"Inspect seed manifests."`
}

type seedCmd struct {
	Validate seedValidateCmd `cmd:"" help:"Decode and validate a seed manifest."`
	Export   seedExportCmd   `cmd:"" help:"Write the built-in seed data as a YAML manifest."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser := kong.Parse(&cli{},
		kong.Name("libadmin"),
		kong.Description("Library administration dashboard."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := parser.Run()
	parser.FatalIfErrorf(err)
}
