package main

import (
	"os"

	"github.com/iliyamo/lunchly/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
