package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fastygo/dsp-console/internal/cli"
)

func main() {
	err := cli.Execute(context.Background(), cli.Options{}, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}
