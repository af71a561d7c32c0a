package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/harrison/fsearch/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the root command and maps failure to exit status 1.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
