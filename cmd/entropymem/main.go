package main

import (
	"os"

	"github.com/entropyworks/entropymem/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
