// Command fnfn runs integer-file functions on paths or open streams.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/fnfn/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fnfn:", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
