package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tracefront/build-plane/cmd/buildplane/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
