// Package main mints player tokens and manages credits on a running server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	admincmd "github.com/Womp-Womp/AdventureBot/internal/cmd/admin"
	"github.com/Womp-Womp/AdventureBot/internal/platform/config"
)

func main() {
	cfg, err := admincmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[ADVENTURE-ADMIN] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := admincmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("%s: %v", cfg.Command, err)
	}
}
