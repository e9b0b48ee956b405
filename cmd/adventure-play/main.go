// Package main plays adventures from a terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	playcmd "github.com/Womp-Womp/AdventureBot/internal/cmd/play"
	"github.com/Womp-Womp/AdventureBot/internal/platform/config"
)

func main() {
	cfg, err := playcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[ADVENTURE-PLAY] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := playcmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		config.Exitf("play: %v", err)
	}
}
