package main

import (
	"os"

	"github.com/searchlens/searchlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
