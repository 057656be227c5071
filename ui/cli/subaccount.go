// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newSubAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subaccount",
		Aliases: []string{"sub"},
		Short:   "Manage delegated sub-accounts (create, list, permissions, delete)",
		Long: `Sub-accounts delegate a subset of the wallet's capabilities
(view, trade, withdraw, deposit) with optional per-asset daily limits.`,
	}
	cmd.AddCommand(
		newSubAccountCreateCmd(),
		newSubAccountListCmd(),
		newSubAccountSetPermissionsCmd(),
		newSubAccountRefCmd("delete", "Delete a sub-account", "deleteSubAccount"),
		newSubAccountRefCmd("reset-window", "Reset a sub-account's daily usage window", "resetSubAccountWindow"),
	)
	return cmd
}

// parseLimits reads repeated "NAME=AMOUNT" flags, e.g. maxDailyTrade=500.
func parseLimits(in []string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for _, l := range in {
		i := strings.LastIndex(l, "=")
		if i <= 0 {
			return nil, fmt.Errorf("limit %q: want NAME=AMOUNT", l)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(l[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("limit %q: %w", l, err)
		}
		out[strings.TrimSpace(l[:i])] = d
	}
	return out, nil
}

func addPermissionFlags(cmd *cobra.Command, perms, limits *[]string) {
	cmd.Flags().StringSliceVarP(perms, "permission", "p", nil, "Permission to grant: view, trade, withdraw, deposit (repeatable)")
	cmd.Flags().StringArrayVar(limits, "limit", nil, "Daily limit as NAME=AMOUNT: maxDailyTrade, maxDailyWithdraw, maxDailyDeposit (repeatable)")
}

func newSubAccountCreateCmd() *cobra.Command {
	var name string
	var perms, limits []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sub-account",
		Example: `  soroban-trader subaccount create -w treasury --name desk-eu \
    -p view -p trade --limit maxDailyTrade=1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lim, err := parseLimits(limits)
			if err != nil {
				return err
			}
			resp, err := callOp(cmd, "createSubAccount", core.SubAccountRequest{Name: name, Permissions: perms, Limits: lim})
			if err != nil || !textOutput() {
				return err
			}
			sa := resp.Payload.(*model.SubAccount)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.sub_account_created", sa.Name, sa.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Sub-account name (at least 3 characters)")
	addPermissionFlags(cmd, &perms, &limits)
	return cmd
}

func newSubAccountSetPermissionsCmd() *cobra.Command {
	var perms, limits []string
	cmd := &cobra.Command{
		Use:   "set-permissions <sub-account-id>",
		Short: "Replace a sub-account's permissions and limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lim, err := parseLimits(limits)
			if err != nil {
				return err
			}
			resp, err := callOp(cmd, "setSubAccountPermissions", core.SubAccountRequest{SubAccountID: args[0], Permissions: perms, Limits: lim})
			if err != nil || !textOutput() {
				return err
			}
			sa := resp.Payload.(*model.SubAccount)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.sub_account_updated", sa.Name))
			return nil
		},
	}
	addPermissionFlags(cmd, &perms, &limits)
	return cmd
}

func newSubAccountRefCmd(use, short, op string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <sub-account-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, op, core.SubAccountRef{SubAccountID: args[0]})
			if err != nil || !textOutput() {
				return err
			}
			switch res := resp.Payload.(type) {
			case *core.DeleteSubAccountResult:
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.sub_account_deleted", res.SubAccountID))
			case *model.SubAccount:
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.window_reset", res.Name))
			}
			return nil
		},
	}
}

func newSubAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sub-accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, "listSubAccounts", nil)
			if err != nil || !textOutput() {
				return err
			}
			res := resp.Payload.(*core.ListSubAccountsResult)
			out := cmd.OutOrStdout()
			if res.Count == 0 {
				fmt.Fprintln(out, i18n.T("cli.no_sub_accounts"))
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPERMISSIONS\tLIMITS (USED/LIMIT)")
			for _, sa := range res.SubAccounts {
				perms := make([]string, len(sa.Permissions))
				for i, p := range sa.Permissions {
					perms[i] = string(p)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sa.ID, sa.Name, strings.Join(perms, ","), formatLimits(sa))
			}
			return w.Flush()
		},
	}
}

func formatLimits(sa *model.SubAccount) string {
	if len(sa.Limits) == 0 {
		return "-"
	}
	names := make([]string, 0, len(sa.Limits))
	for n := range sa.Limits {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		used := sa.Usage[n]
		parts[i] = fmt.Sprintf("%s %s/%s", n, used.String(), sa.Limits[n].String())
	}
	return strings.Join(parts, ", ")
}
