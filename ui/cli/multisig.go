// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newMultiSigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multisig",
		Short: "Manage signers and transaction proposals",
		Long: `The 'multisig' command group configures the wallet's weighted signer
registry and drives proposals through sign, execute and reject.`,
	}
	cmd.AddCommand(
		newMultiSigSetupCmd(),
		newMultiSigProposeCmd(),
		newProposalActionCmd("sign", "Add your signature to a pending proposal", "signTransaction"),
		newProposalActionCmd("execute", "Execute a proposal that met its threshold", "executeMultiSigTx"),
		newProposalActionCmd("reject", "Reject a pending proposal", "rejectProposal"),
		newMultiSigListCmd(),
	)
	return cmd
}

// parseSigner reads "KEY:WEIGHT[:display name]".
func parseSigner(s string) (model.Signer, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return model.Signer{}, fmt.Errorf("signer %q: want KEY:WEIGHT[:NAME]", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.Signer{}, fmt.Errorf("signer %q: weight: %w", s, err)
	}
	sg := model.Signer{PublicKeyID: strings.TrimSpace(parts[0]), Weight: w}
	if len(parts) == 3 {
		sg.DisplayName = strings.TrimSpace(parts[2])
	}
	return sg, nil
}

func newMultiSigSetupCmd() *cobra.Command {
	var signers []string
	var threshold int
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Replace the signer registry",
		Example: `  soroban-trader multisig setup -w treasury \
    --signer GALICE:2:Alice --signer GBOB:1 --signer GCAROL:1 --threshold 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := core.SetupRequest{Threshold: threshold}
			for _, s := range signers {
				sg, err := parseSigner(s)
				if err != nil {
					return err
				}
				req.Signers = append(req.Signers, sg)
			}
			resp, err := callOp(cmd, "setupMultiSig", req)
			if err != nil || !textOutput() {
				return err
			}
			res := resp.Payload.(*core.SetupResult)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("cli.setup_done", res.SecurityLevel))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SIGNER\tWEIGHT\tNAME")
			for _, sg := range res.Signers {
				fmt.Fprintf(w, "%s\t%d\t%s\n", sg.PublicKeyID, sg.Weight, sg.DisplayName)
			}
			_ = w.Flush()
			fmt.Fprintf(out, "%s: %d/%d\n", i18n.T("dashboard.threshold"), res.Threshold, res.TotalWeight)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&signers, "signer", nil, "Signer as KEY:WEIGHT[:NAME] (repeatable)")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "Signature weight required to execute")
	return cmd
}

func newMultiSigProposeCmd() *cobra.Command {
	var (
		payloadJSON string
		txType      string
		destination string
		amount      string
		asset       string
		sendAsset   string
		recvAsset   string
		contractID  string
		function    string
		fnArgs      []string
		memo        string
		description string
		subAccount  string
	)
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose a transaction for multi-signature approval",
		Long: `Creates a pending proposal carrying your signature. Describe the
transaction with flags or pass the whole payload as JSON with --payload.
With --sub-account the sub-account's permissions and daily limits apply.`,
		Example: `  soroban-trader multisig propose -w treasury --type payment \
    --destination GDEST --amount 250 --asset native --description "Payroll"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := core.ProposeRequest{Description: description, SubAccountID: subAccount}
			if payloadJSON != "" {
				if err := json.Unmarshal([]byte(payloadJSON), &req.TxPayload); err != nil {
					return fmt.Errorf("--payload: %w", err)
				}
			} else {
				req.TxPayload = model.TxPayload{
					Type:         model.TxType(txType),
					Destination:  destination,
					Asset:        asset,
					SendAsset:    sendAsset,
					ReceiveAsset: recvAsset,
					ContractID:   contractID,
					Function:     function,
					Args:         fnArgs,
					Memo:         memo,
				}
				if amount != "" {
					d, err := decimal.NewFromString(amount)
					if err != nil {
						return fmt.Errorf("--amount: %w", err)
					}
					req.TxPayload.Amount = d
				}
			}
			resp, err := callOp(cmd, "proposeTransaction", req)
			if err != nil || !textOutput() {
				return err
			}
			res := resp.Payload.(*core.ProposeResult)
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.proposal_created", res.ProposalID, res.CurrentWeight, res.RemainingWeight))
			if res.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Expires: %s\n", res.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&payloadJSON, "payload", "", "Transaction payload as JSON (overrides the payload flags)")
	f.StringVar(&txType, "type", "payment", "Transaction type (payment, swap, trustline, contract_call)")
	f.StringVar(&destination, "destination", "", "Destination account")
	f.StringVar(&amount, "amount", "", "Amount")
	f.StringVar(&asset, "asset", "", "Asset (native or CODE:ISSUER)")
	f.StringVar(&sendAsset, "send-asset", "", "Asset sold by a swap")
	f.StringVar(&recvAsset, "receive-asset", "", "Asset bought by a swap")
	f.StringVar(&contractID, "contract", "", "Contract id for contract_call")
	f.StringVar(&function, "function", "", "Contract function for contract_call")
	f.StringArrayVar(&fnArgs, "arg", nil, "Contract call argument (repeatable)")
	f.StringVar(&memo, "memo", "", "Transaction memo")
	f.StringVar(&description, "description", "", "Human-readable description")
	f.StringVar(&subAccount, "sub-account", "", "Charge the proposal to this sub-account")
	return cmd
}

func newProposalActionCmd(use, short, op string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <proposal-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, op, core.ProposalRef{ProposalID: args[0]})
			if err != nil || !textOutput() {
				return err
			}
			out := cmd.OutOrStdout()
			switch res := resp.Payload.(type) {
			case *core.SignResult:
				fmt.Fprintln(out, i18n.T("cli.proposal_signed", res.ProposalID, res.CurrentWeight, res.RemainingWeight))
			case *core.ExecuteResult:
				fmt.Fprintln(out, i18n.T("cli.proposal_executed", res.ProposalID))
				if res.LedgerTxID != "" {
					fmt.Fprintln(out, i18n.T("cli.ledger_tx", res.LedgerTxID))
				}
				if res.SubmissionError != nil {
					fmt.Fprintln(out, i18n.T("cli.submission_failed", res.SubmissionError.Error))
				}
			case *core.ProposalStatusResult:
				fmt.Fprintln(out, i18n.T("cli.proposal_rejected", res.ProposalID))
			}
			return nil
		},
	}
}

func newMultiSigListCmd() *cobra.Command {
	var status string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List proposals, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, "getMultiSigProposals", core.ListProposalsRequest{Status: status, Limit: limit})
			if err != nil || !textOutput() {
				return err
			}
			res := resp.Payload.(*core.ListProposalsResult)
			out := cmd.OutOrStdout()
			if len(res.Proposals) == 0 {
				fmt.Fprintln(out, i18n.T("cli.no_proposals"))
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tAMOUNT\tWEIGHT\tCREATED BY\tCREATED")
			for _, p := range res.Proposals {
				st := string(p.Status)
				if p.Expired && p.Status == model.StatusPending {
					st += " (expired)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\n",
					p.ID, st, p.Payload.Type, p.Payload.Amount.String(),
					p.CurrentWeight, p.CurrentWeight+p.RemainingWeight,
					p.CreatedBy, p.CreatedAt.Format(time.RFC3339))
			}
			_ = w.Flush()
			fmt.Fprintf(out, "%d of %d proposals\n", len(res.Proposals), res.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, executed, rejected, expired, all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of proposals to show")
	return cmd
}
