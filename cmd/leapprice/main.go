// Package main provides the leapprice CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapprice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
