// dlf decodes the binary time-series logs written by the data logger
// firmware. See "dlf help" for the available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/dlf/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "dlf:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
