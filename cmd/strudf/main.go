// Command strudf evaluates, queries, streams and tests the bounded string
// functions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aitch25/lib-mysqludf-str/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "strudf:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
