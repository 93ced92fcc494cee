package main

import (
	"context"
	"fmt"
	"os"

	"github.com/firelite-db/firelite-go/benchmark"
)

func main() {
	if err := benchmark.DriverMain(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
