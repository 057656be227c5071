// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/identity"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
	"github.com/spf13/cobra"
)

// newIdentityCmd manages credentials. These commands work on the database
// directly and need no secret.
func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Enroll and manage caller credentials",
	}

	var publicKey, label string
	var passwordStdin, prompt bool
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Enroll a credential for a wallet signer and print its secret",
		Long: `Enrolls a credential binding a public key id to the wallet given with
--wallet. The secret is printed once and cannot be recovered. Without
--prompt or --password-stdin a random password is generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw security.Secret
			switch {
			case passwordStdin:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				pw = security.FromString(strings.TrimRight(line, "\r\n"))
			case prompt:
				if !isTerminal() {
					return fmt.Errorf("--prompt needs a terminal")
				}
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				b, err := readPassword()
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				pw = security.FromBytes(b)
			}
			defer pw.Zero()

			r := identity.NewResolver(appStore, passwordCost)
			cred, secret, err := r.Enroll(cmd.Context(), identity.Enrollment{
				WalletID:    appConfig.Wallet,
				PublicKeyID: publicKey,
				Label:       label,
				Password:    pw,
			})
			if err != nil {
				return err
			}
			defer secret.Zero()

			out := cmd.OutOrStdout()
			if !textOutput() {
				var s string
				_ = secret.Use(func(b []byte) error { s = string(b); return nil })
				return printJSON(out, map[string]any{"credential": cred, "secret": s})
			}
			fmt.Fprintln(out, i18n.T("cli.identity_added", cred.String(), cred.WalletID))
			return secret.Use(func(b []byte) error {
				_, err := fmt.Fprintf(out, "Secret: %s\n", b)
				return err
			})
		},
	}
	addCmd.Flags().StringVar(&publicKey, "public-key", "", "Public key id of the signer")
	addCmd.Flags().StringVar(&label, "label", "", "Optional label")
	addCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	addCmd.Flags().BoolVar(&prompt, "prompt", false, "Prompt for the password")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List enrolled credentials (all wallets unless --wallet is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := appStore.ListCredentials(cmd.Context(), appConfig.Wallet)
			if err != nil {
				return err
			}
			if !textOutput() {
				return printJSON(cmd.OutOrStdout(), creds)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWALLET\tPUBLIC KEY\tLABEL\tCREATED")
			for _, c := range creds {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.WalletID, c.PublicKeyID, c.Label, c.CreatedAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <credential-id>",
		Short: "Revoke a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appStore.DeleteCredential(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credential %s removed\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd)
	return cmd
}
