// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/spf13/cobra"
)

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <operation> [params-json | -]",
		Short: "Invoke any operation with JSON parameters and print the JSON response",
		Long: fmt.Sprintf(`Runs one operation of the request surface. Parameters are given as a
JSON object or read from stdin with "-". The response is always JSON.

Operations: %s`, strings.Join(core.Operations(), ", ")),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if len(args) == 2 {
				if args[1] == "-" {
					b, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
					raw = b
				} else {
					raw = []byte(args[1])
				}
			}
			outputFormat = "json"
			_, err := callRaw(cmd, args[0], json.RawMessage(raw))
			return err
		},
	}
}
