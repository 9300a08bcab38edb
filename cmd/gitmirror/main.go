// Gitmirror keeps branch-scoped local mirrors of remote git repositories.
//
// Usage:
//
//	gitmirror sync "https://example.com/data.git[main]"
//	gitmirror path https://example.com/data.git main
//	gitmirror parse "ssh://git@example.com/data.git[release]"
//	gitmirror list
//	gitmirror prune --older-than 720h
//	gitmirror config
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
