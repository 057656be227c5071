// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// LoadSnapshot reads every row of one wallet and assembles its snapshot. An
// unknown wallet yields an empty snapshot.
func (s *BunStore) LoadSnapshot(ctx context.Context, walletID string) (*model.Snapshot, error) {
	snap, err := loadSnapshot(ctx, s.bun, walletID)
	if err != nil {
		return nil, storageError("load wallet "+walletID, err)
	}
	return snap, nil
}

// SaveSnapshot replaces every row of one wallet inside a single transaction.
func (s *BunStore) SaveSnapshot(ctx context.Context, walletID string, snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("save wallet %s: nil snapshot", walletID)
	}
	start := time.Now()
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if err := deleteWalletRows(ctx, tx, walletID); err != nil {
			return err
		}
		return insertSnapshot(ctx, tx, walletID, snap)
	})
	if err != nil {
		return storageError("save wallet "+walletID, err)
	}
	dbLogf("db: saved wallet %s (%d proposals, %d sub-accounts) in %s", walletID, len(snap.Proposals), len(snap.SubAccounts), time.Since(start))
	return nil
}

// ListWallets returns the ids of every stored wallet in ascending order.
func (s *BunStore) ListWallets(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.bun.NewSelect().Model((*WalletModel)(nil)).Column("id").Order("id ASC").Scan(ctx, &ids); err != nil {
		return nil, storageError("list wallets", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func loadSnapshot(ctx context.Context, db bun.IDB, walletID string) (*model.Snapshot, error) {
	snap := model.NewSnapshot(walletID)

	var w WalletModel
	err := db.NewSelect().Model(&w).Where("id = ?", walletID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snap, nil
		}
		return nil, err
	}
	snap.UpdatedAt = w.UpdatedAt
	snap.Policy.Mode = model.PolicyMode(w.PolicyMode)
	if snap.Policy.Mode == "" {
		snap.Policy.Mode = model.ModeNone
	}
	snap.Policy.UpdatedAt = w.PolicyUpdatedAt

	if w.Configured {
		var signers []SignerModel
		if err := db.NewSelect().Model(&signers).Where("wallet_id = ?", walletID).Order("sort_order ASC").Scan(ctx); err != nil {
			return nil, fmt.Errorf("load signers: %w", err)
		}
		reg := &model.SignerRegistry{Threshold: w.Threshold, CreatedAt: w.RegistryCreatedAt, Signers: make([]model.Signer, 0, len(signers))}
		for _, sm := range signers {
			reg.Signers = append(reg.Signers, model.Signer{PublicKeyID: sm.PublicKeyID, Weight: sm.Weight, DisplayName: sm.DisplayName})
		}
		snap.Registry = reg
	}

	var proposals []ProposalModel
	if err := db.NewSelect().Model(&proposals).Where("wallet_id = ?", walletID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	for _, pm := range proposals {
		p, err := proposalFromModel(pm)
		if err != nil {
			return nil, err
		}
		snap.Proposals[p.ID] = p
	}

	var sigs []SignatureModel
	if err := db.NewSelect().Model(&sigs).Where("wallet_id = ?", walletID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load signatures: %w", err)
	}
	for _, sm := range sigs {
		if p, ok := snap.Proposals[sm.ProposalID]; ok {
			p.Signatures[sm.PublicKeyID] = sm.SignedAt
		}
	}

	var subs []SubAccountModel
	if err := db.NewSelect().Model(&subs).Where("wallet_id = ?", walletID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load sub-accounts: %w", err)
	}
	for _, sm := range subs {
		sa, err := subAccountFromModel(sm)
		if err != nil {
			return nil, err
		}
		snap.SubAccounts[sa.ID] = sa
	}

	var assets []PolicyAssetModel
	if err := db.NewSelect().Model(&assets).Where("wallet_id = ?", walletID).Order("asset ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load policy assets: %w", err)
	}
	for _, a := range assets {
		snap.Policy.Assets = append(snap.Policy.Assets, a.Asset)
	}
	return snap, nil
}

func deleteWalletRows(ctx context.Context, tx bun.Tx, walletID string) error {
	perWallet := []any{
		(*SignerModel)(nil),
		(*SignatureModel)(nil),
		(*ProposalModel)(nil),
		(*SubAccountModel)(nil),
		(*PolicyAssetModel)(nil),
	}
	for _, m := range perWallet {
		if _, err := tx.NewDelete().Model(m).Where("wallet_id = ?", walletID).Exec(ctx); err != nil {
			return fmt.Errorf("clear wallet rows: %w", err)
		}
	}
	if _, err := tx.NewDelete().Model((*WalletModel)(nil)).Where("id = ?", walletID).Exec(ctx); err != nil {
		return fmt.Errorf("clear wallet: %w", err)
	}
	return nil
}

func insertSnapshot(ctx context.Context, tx bun.Tx, walletID string, snap *model.Snapshot) error {
	w := &WalletModel{
		ID:              walletID,
		PolicyMode:      string(snap.Policy.Mode),
		PolicyUpdatedAt: snap.Policy.UpdatedAt,
		UpdatedAt:       snap.UpdatedAt,
	}
	if snap.Registry != nil {
		w.Configured = true
		w.Threshold = snap.Registry.Threshold
		w.RegistryCreatedAt = snap.Registry.CreatedAt
	}
	if _, err := tx.NewInsert().Model(w).Exec(ctx); err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}

	if snap.Registry != nil && len(snap.Registry.Signers) > 0 {
		signers := make([]SignerModel, 0, len(snap.Registry.Signers))
		for i, sg := range snap.Registry.Signers {
			signers = append(signers, SignerModel{WalletID: walletID, PublicKeyID: sg.PublicKeyID, Weight: sg.Weight, DisplayName: sg.DisplayName, SortOrder: i})
		}
		if _, err := tx.NewInsert().Model(&signers).Exec(ctx); err != nil {
			return fmt.Errorf("insert signers: %w", err)
		}
	}

	if len(snap.Proposals) > 0 {
		proposals := make([]ProposalModel, 0, len(snap.Proposals))
		var sigs []SignatureModel
		for _, p := range snap.Proposals {
			pm, err := proposalToModel(walletID, p)
			if err != nil {
				return err
			}
			proposals = append(proposals, pm)
			for key, at := range p.Signatures {
				sigs = append(sigs, SignatureModel{WalletID: walletID, ProposalID: p.ID, PublicKeyID: key, SignedAt: at})
			}
		}
		if _, err := tx.NewInsert().Model(&proposals).Exec(ctx); err != nil {
			return fmt.Errorf("insert proposals: %w", err)
		}
		if len(sigs) > 0 {
			if _, err := tx.NewInsert().Model(&sigs).Exec(ctx); err != nil {
				return fmt.Errorf("insert signatures: %w", err)
			}
		}
	}

	if len(snap.SubAccounts) > 0 {
		subs := make([]SubAccountModel, 0, len(snap.SubAccounts))
		for _, sa := range snap.SubAccounts {
			sm, err := subAccountToModel(walletID, sa)
			if err != nil {
				return err
			}
			subs = append(subs, sm)
		}
		if _, err := tx.NewInsert().Model(&subs).Exec(ctx); err != nil {
			return fmt.Errorf("insert sub-accounts: %w", err)
		}
	}

	if len(snap.Policy.Assets) > 0 {
		assets := make([]PolicyAssetModel, 0, len(snap.Policy.Assets))
		for _, a := range snap.Policy.Assets {
			assets = append(assets, PolicyAssetModel{WalletID: walletID, Asset: a})
		}
		if _, err := tx.NewInsert().Model(&assets).Exec(ctx); err != nil {
			return fmt.Errorf("insert policy assets: %w", err)
		}
	}
	return nil
}

func proposalToModel(walletID string, p *model.Proposal) (ProposalModel, error) {
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return ProposalModel{}, fmt.Errorf("encode payload of proposal %s: %w", p.ID, err)
	}
	return ProposalModel{
		WalletID:     walletID,
		ID:           p.ID,
		Status:       string(p.Status),
		Payload:      string(payload),
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		CreatedBy:    p.CreatedBy,
		ExpiresAt:    p.ExpiresAt,
		SubAccountID: p.SubAccountID,
		ClosedAt:     p.ClosedAt,
		ClosedBy:     p.ClosedBy,
		LedgerTxID:   p.LedgerTxID,
	}, nil
}

func proposalFromModel(pm ProposalModel) (*model.Proposal, error) {
	p := &model.Proposal{
		ID:           pm.ID,
		Status:       model.ProposalStatus(pm.Status),
		Description:  pm.Description,
		Signatures:   make(map[string]time.Time),
		CreatedAt:    pm.CreatedAt,
		CreatedBy:    pm.CreatedBy,
		ExpiresAt:    pm.ExpiresAt,
		SubAccountID: pm.SubAccountID,
		ClosedAt:     pm.ClosedAt,
		ClosedBy:     pm.ClosedBy,
		LedgerTxID:   pm.LedgerTxID,
	}
	if err := json.Unmarshal([]byte(pm.Payload), &p.Payload); err != nil {
		return nil, fmt.Errorf("decode payload of proposal %s: %w", pm.ID, err)
	}
	return p, nil
}

func subAccountToModel(walletID string, sa *model.SubAccount) (SubAccountModel, error) {
	perms := make([]string, 0, len(sa.Permissions))
	for _, p := range sa.Permissions {
		perms = append(perms, string(p))
	}
	limits, err := encodeAmounts(sa.Limits)
	if err != nil {
		return SubAccountModel{}, fmt.Errorf("encode limits of sub-account %s: %w", sa.ID, err)
	}
	usage, err := encodeAmounts(sa.Usage)
	if err != nil {
		return SubAccountModel{}, fmt.Errorf("encode usage of sub-account %s: %w", sa.ID, err)
	}
	return SubAccountModel{
		WalletID:        walletID,
		ID:              sa.ID,
		Name:            sa.Name,
		Permissions:     strings.Join(perms, ","),
		SpendLimits:     limits,
		UsageAmounts:    usage,
		WindowStartedAt: sa.WindowStartedAt,
		CreatedAt:       sa.CreatedAt,
	}, nil
}

func subAccountFromModel(sm SubAccountModel) (*model.SubAccount, error) {
	sa := &model.SubAccount{
		ID:              sm.ID,
		Name:            sm.Name,
		Permissions:     []model.Permission{},
		WindowStartedAt: sm.WindowStartedAt,
		CreatedAt:       sm.CreatedAt,
	}
	for _, p := range strings.Split(sm.Permissions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			sa.Permissions = append(sa.Permissions, model.Permission(p))
		}
	}
	sort.Slice(sa.Permissions, func(i, j int) bool { return sa.Permissions[i] < sa.Permissions[j] })
	var err error
	if sa.Limits, err = decodeAmounts(sm.SpendLimits); err != nil {
		return nil, fmt.Errorf("decode limits of sub-account %s: %w", sm.ID, err)
	}
	if sa.Usage, err = decodeAmounts(sm.UsageAmounts); err != nil {
		return nil, fmt.Errorf("decode usage of sub-account %s: %w", sm.ID, err)
	}
	return sa, nil
}

func encodeAmounts(m map[string]decimal.Decimal) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAmounts(s string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}
