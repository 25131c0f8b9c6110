package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	bulkupdater "github.com/bredtape/bulk_updater"
	"github.com/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := bulkupdater.Run(ctx, os.Args, os.Getenv, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel() // os.Exit skips deferred calls
		os.Exit(1)
	}
}
