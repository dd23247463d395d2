// Package main is the entrypoint for the converter service.
// timeconvd serves the converter page, the JSON conversion API and the
// current-time event stream over HTTP, and gRPC health checks.
package main

import (
	"context"
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/aelexs/timeconverter/internal/server"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return server.Run(ctx, server.Params{
		Name:  "timeconvd",
		Setup: setup,
	}, server.Listeners{})
}
