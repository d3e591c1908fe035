// Command kaprekar-explorer classifies Kaprekar routine orbits across a
// rectangle of (base, digit-count) pairs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kaprekar-explorer/cmd/kaprekar-explorer/cmd"
	"github.com/kaprekar-explorer/pkg/telemetry"
)

func main() {
	ctx := context.Background()

	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry init failed: %v\n", err)
		os.Exit(1)
	}
	defer shutdown(ctx)

	cmd.ExecuteContext(ctx)
}
