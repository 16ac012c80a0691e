package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kyleking/gh-makedispatch/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
