package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rexplorer/rexp/pkg/rexpcli"
)

var osExit = os.Exit

var execute = rexpcli.Execute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	osExit(code)
}
