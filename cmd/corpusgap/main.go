// Package main provides the entry point for the corpusgap CLI.
package main

import (
	"os"

	"github.com/corpusgap/corpusgap/cmd/corpusgap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
