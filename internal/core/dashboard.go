// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/multisig"
)

// DashboardData holds aggregated values for the institutional dashboard.
type DashboardData struct {
	WalletID         string                       `json:"walletId"`
	Configured       bool                         `json:"multiSigConfigured"`
	Signers          []model.Signer               `json:"signers"`
	SignerCount      int                          `json:"signerCount"`
	Threshold        int                          `json:"threshold"`
	TotalWeight      int                          `json:"totalWeight"`
	SecurityLevel    model.SecurityLevel          `json:"securityLevel"`
	RiskLevel        model.RiskLevel              `json:"riskLevel"`
	ProposalCounts   map[model.ProposalStatus]int `json:"proposalCounts"`
	PendingProposals int                          `json:"pendingProposals"`
	SubAccountCount  int                          `json:"subAccountCount"`
	SubAccountNames  []string                     `json:"subAccountNames"`
	ComplianceMode   model.PolicyMode             `json:"complianceMode"`
	PolicyAssets     int                          `json:"policyAssetCount"`
}

// BuildDashboardData is a pure read composition of one wallet snapshot.
func BuildDashboardData(snap *model.Snapshot) DashboardData {
	out := DashboardData{
		WalletID:        snap.WalletID,
		Signers:         []model.Signer{},
		ProposalCounts:  multisig.CountByStatus(snap.Proposals),
		SubAccountCount: len(snap.SubAccounts),
		SubAccountNames: snap.SubAccountNames(),
		ComplianceMode:  snap.Policy.Mode,
		PolicyAssets:    len(snap.Policy.Assets),
		SecurityLevel:   multisig.SecurityLevel(snap.Registry),
	}
	if snap.Registry != nil {
		out.Configured = true
		out.Signers = append(out.Signers, snap.Registry.Signers...)
		out.SignerCount = len(snap.Registry.Signers)
		out.Threshold = snap.Registry.Threshold
		out.TotalWeight = multisig.TotalWeight(snap.Registry)
	}
	out.RiskLevel = out.SecurityLevel.Risk()
	out.PendingProposals = out.ProposalCounts[model.StatusPending]
	if out.ComplianceMode == "" {
		out.ComplianceMode = model.ModeNone
	}
	return out
}

// GetInstitutionalDashboard builds the dashboard for the caller's wallet.
func (s *Service) GetInstitutionalDashboard(ctx context.Context, caller model.Identity) (res *DashboardData, err error) {
	ctx, span, err := s.begin(ctx, "getInstitutionalDashboard", caller)
	defer func() { s.end(ctx, span, "getInstitutionalDashboard", caller, err) }()
	if err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, caller.WalletID)
	if err != nil {
		return nil, err
	}
	d := BuildDashboardData(snap)
	return &d, nil
}
