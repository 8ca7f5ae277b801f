package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/PandaWhoCodes/youversion/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := app.Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
