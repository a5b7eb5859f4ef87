package main

import (
	"context"
	"fmt"
	"os"

	"github.com/easytv/smclient-go/internal/cli/command"
	"github.com/easytv/smclient-go/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	app := command.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
