// Package main provides the entry point for the searchproxy CLI.
package main

import (
	"os"

	"github.com/certogo-tech/searchproxy/cmd/searchproxy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
