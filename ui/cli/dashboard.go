// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("60")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(18)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func levelStyle(level string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch level {
	case string(model.SecurityHigh), string(model.RiskLow):
		return s.Foreground(lipgloss.Color("42"))
	case string(model.SecurityStandard), string(model.RiskMedium):
		return s.Foreground(lipgloss.Color("214"))
	default:
		return s.Foreground(lipgloss.Color("196"))
	}
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderDashboard lays out the dashboard as two panels side by side.
func renderDashboard(d core.DashboardData) string {
	gov := []string{row(i18n.T("dashboard.wallet"), d.WalletID)}
	if !d.Configured {
		gov = append(gov, lipgloss.NewStyle().Italic(true).Render(i18n.T("dashboard.not_configured")))
	} else {
		gov = append(gov,
			row(i18n.T("dashboard.signers"), fmt.Sprintf("%d", d.SignerCount)),
			row(i18n.T("dashboard.threshold"), fmt.Sprintf("%d", d.Threshold)),
			row(i18n.T("dashboard.total_weight"), fmt.Sprintf("%d", d.TotalWeight)),
		)
		for _, s := range d.Signers {
			name := s.PublicKeyID
			if s.DisplayName != "" {
				name = s.DisplayName + " (" + s.PublicKeyID + ")"
			}
			gov = append(gov, fmt.Sprintf("  - %s w=%d", name, s.Weight))
		}
	}
	gov = append(gov,
		row(i18n.T("dashboard.security_level"), levelStyle(string(d.SecurityLevel)).Render(string(d.SecurityLevel))),
		row(i18n.T("dashboard.risk_level"), levelStyle(string(d.RiskLevel)).Render(string(d.RiskLevel))),
	)

	statuses := make([]string, 0, len(d.ProposalCounts))
	for st := range d.ProposalCounts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)
	counts := make([]string, 0, len(statuses))
	for _, st := range statuses {
		counts = append(counts, fmt.Sprintf("%s=%d", st, d.ProposalCounts[model.ProposalStatus(st)]))
	}
	if len(counts) == 0 {
		counts = append(counts, "0")
	}

	ops := []string{
		row(i18n.T("dashboard.proposals"), strings.Join(counts, " ")),
		row(i18n.T("dashboard.sub_accounts"), fmt.Sprintf("%d", d.SubAccountCount)),
	}
	for _, n := range d.SubAccountNames {
		ops = append(ops, "  - "+n)
	}
	ops = append(ops,
		row(i18n.T("dashboard.compliance"), string(d.ComplianceMode)),
		row(i18n.T("dashboard.assets"), fmt.Sprintf("%d", d.PolicyAssets)),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, gov...)),
		" ",
		panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, ops...)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(i18n.T("dashboard.title")), body)
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the institutional dashboard of the wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := callOp(cmd, "getInstitutionalDashboard", nil)
			if err != nil || !textOutput() {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDashboard(*resp.Payload.(*core.DashboardData)))
			return nil
		},
	}
}
