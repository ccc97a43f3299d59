// Package main is the entry point for the plancost CLI.
package main

import (
	"os"

	"plancost/cmd/plancost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
