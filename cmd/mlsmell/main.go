// Package main is the entry point of the mlsmell CLI.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/leapstack-labs/mlsmell/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
