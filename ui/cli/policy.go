// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage the asset compliance policy",
	}

	var mode string
	var assets []string
	setCmd := &cobra.Command{
		Use:     "set",
		Short:   "Replace the asset policy",
		Example: `  soroban-trader policy set -w treasury --mode whitelist --asset native --asset USDC:GISSUER`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, "setAssetPolicy", core.PolicyRequest{Mode: mode, Assets: assets})
			if err != nil || !textOutput() {
				return err
			}
			p := resp.Payload.(*model.CompliancePolicy)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.policy_set", p.Mode, len(p.Assets)))
			return nil
		},
	}
	setCmd.Flags().StringVar(&mode, "mode", "", "Policy mode: whitelist, blacklist or none")
	setCmd.Flags().StringArrayVar(&assets, "asset", nil, "Asset listed by the policy (repeatable)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active asset policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, "getAssetPolicy", nil)
			if err != nil || !textOutput() {
				return err
			}
			p := resp.Payload.(*model.CompliancePolicy)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", i18n.T("dashboard.compliance"), p.Mode)
			for _, a := range p.Assets {
				fmt.Fprintf(out, "  - %s\n", a)
			}
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <asset>",
		Short: "Check one asset against the active policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, "checkAssetCompliance", core.ComplianceRequest{Asset: args[0]})
			if err != nil || !textOutput() {
				return err
			}
			res := resp.Payload.(*core.ComplianceResult)
			if res.Compliant {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.compliant", res.Asset))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.not_compliant", res.Asset))
			}
			return nil
		},
	}

	cmd.AddCommand(setCmd, showCmd, checkCmd)
	return cmd
}
