package main

import (
	"os"

	"github.com/sadopc/solartrack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
