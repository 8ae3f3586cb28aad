// Package main is the entry point for sitectl.
package main

import (
	"os"

	"github.com/GunarsK-portfolio/artist-site/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
