package main

import (
	"os"

	"github.com/rmello/clamtap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
