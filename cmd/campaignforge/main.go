// Package main provides the entry point for the campaignforge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/dadmor/campaignforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
