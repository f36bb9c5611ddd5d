// Package main is the entry point for plantcare.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nhle/plant-care/internal/cli"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, cli.DefaultBuilder))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, build cli.Builder) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(build)
	c.SetArgs(args)
	c.SetOutput(stdout, stderr)

	if err := c.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	return 0
}
