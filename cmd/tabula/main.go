package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/bjaus/tabula/internal/cli"
	"github.com/bjaus/tabula/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	exitCode := 0
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tabula:", err)
		exitCode = 1
	}

	stop()
	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
