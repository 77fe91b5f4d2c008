package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Stderr.WriteString("newspulse: " + err.Error() + "\n")
		os.Exit(1)
	}
}
