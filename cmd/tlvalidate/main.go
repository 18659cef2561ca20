// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// tlvalidate is a CLI tool to validate timeline engine YAML configuration
// files without starting the engine process.
//
// Usage:
//
//	tlvalidate -f config.yaml
//	tlvalidate --file config.yaml
//
// Exit codes:
//   - 0: configuration is valid
//   - 1: configuration is invalid (parse or validation error)
//   - 2: usage error (missing required flag)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ManuGH/xg2g/internal/config"
)

var version = "dev"

func main() {
	var file string
	var showVersion bool

	flag.StringVar(&file, "file", "", "path to YAML configuration file")
	flag.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tlvalidate -f config.yaml")
		fmt.Fprintln(os.Stderr, "  tlvalidate --file config.yaml")
		os.Exit(2)
	}

	// Load already runs cfg.Validate() internally (ENV > file > defaults
	// precedence, per config.Loader.Load), so any parse or validation
	// failure surfaces here.
	if _, err := config.NewLoader(file).Load(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error in %s:\n  %v\n", file, err)
		os.Exit(1)
	}

	fmt.Printf("✓ %s is valid\n", file)
}
