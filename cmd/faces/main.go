package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is swapped out in tests so they never touch a terminal.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "faces",
		Short:         "Learn who's who at FC from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDrillCmd(), newHashPasswordCmd(), newRosterCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
