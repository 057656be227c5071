// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"strings"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/compliance"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// PolicyRequest replaces the wallet's compliance policy.
type PolicyRequest struct {
	Mode   string   `json:"mode"`
	Assets []string `json:"assets"`
}

// ComplianceRequest asks whether one asset passes the active policy.
type ComplianceRequest struct {
	Asset string `json:"asset"`
}

// ComplianceResult answers a ComplianceRequest.
type ComplianceResult struct {
	Asset     string           `json:"asset"`
	Compliant bool             `json:"compliant"`
	Mode      model.PolicyMode `json:"mode"`
}

// SetAssetPolicy replaces the active policy wholesale.
func (s *Service) SetAssetPolicy(ctx context.Context, caller model.Identity, req PolicyRequest) (res *model.CompliancePolicy, err error) {
	ctx, span, err := s.begin(ctx, "setAssetPolicy", caller)
	defer func() { s.end(ctx, span, "setAssetPolicy", caller, err) }()
	if err != nil {
		return nil, err
	}

	snap, err := s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireGovernor(snap, caller); err != nil {
			return err
		}
		p, err := compliance.NewPolicy(req.Mode, req.Assets, now)
		if err != nil {
			return err
		}
		snap.Policy = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: asset policy set to %s (%d assets) by %s", caller.WalletID, snap.Policy.Mode, len(snap.Policy.Assets), caller.PublicKeyID)
	p := snap.Policy
	return &p, nil
}

// GetAssetPolicy returns the active policy.
func (s *Service) GetAssetPolicy(ctx context.Context, caller model.Identity) (res *model.CompliancePolicy, err error) {
	ctx, span, err := s.begin(ctx, "getAssetPolicy", caller)
	defer func() { s.end(ctx, span, "getAssetPolicy", caller, err) }()
	if err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, caller.WalletID)
	if err != nil {
		return nil, err
	}
	p := snap.Policy
	return &p, nil
}

// CheckAssetCompliance evaluates one asset against the active policy.
func (s *Service) CheckAssetCompliance(ctx context.Context, caller model.Identity, req ComplianceRequest) (res *ComplianceResult, err error) {
	ctx, span, err := s.begin(ctx, "checkAssetCompliance", caller)
	defer func() { s.end(ctx, span, "checkAssetCompliance", caller, err) }()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Asset) == "" {
		return nil, model.NewError(model.CodeInvalidRequest, "asset is required").With("field", "asset")
	}

	snap, err := s.load(ctx, caller.WalletID)
	if err != nil {
		return nil, err
	}
	asset := model.NormalizeAsset(req.Asset)
	return &ComplianceResult{
		Asset:     asset,
		Compliant: compliance.Check(snap.Policy, asset),
		Mode:      snap.Policy.Mode,
	}, nil
}
