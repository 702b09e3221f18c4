// Package main replays an auction operation log.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	replaycmd "github.com/louisbranch/gavel/internal/cmd/replay"
)

func main() {
	cfg, err := replaycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[REPLAY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := replaycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
}
