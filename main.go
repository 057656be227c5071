// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for soroban-trader.
//
// Usage:
//
//	go run . [flags]
//	./soroban-trader [flags]
//
// See --help for the available commands.
package main

import (
	"os"

	"github.com/kaankacar/soroban-trader-skill-sub000/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
