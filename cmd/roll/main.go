// Command roll rolls dice from the command line.
//
//	roll 4d6h3
//	roll --max "2d6 + 3"
//	roll -v "3d6x; 1d20"
//
// Flag defaults come from GODICE_MAX_DICE, GODICE_MAX_EXPLOSIONS and
// GODICE_SEED. GODICE_LOG_LEVEL=debug traces every evaluated node on stderr.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sandrolain/godice/internal/config"
)

func main() {
	cfg, err := config.LoadRoll()
	if err != nil {
		fail(err)
	}

	var cli CLI
	p, err := newParser(&cli, cfg)
	if err != nil {
		fail(err)
	}
	if _, err := p.Parse(os.Args[1:]); err != nil {
		p.FatalIfErrorf(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if err := cli.Run(context.Background(), os.Stdout, logger); err != nil {
		fail(err)
	}
}

func fail(err error) {
	report(os.Stderr, err)
	os.Exit(1)
}
