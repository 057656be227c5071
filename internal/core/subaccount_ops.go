// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/subaccount"
	"github.com/shopspring/decimal"
)

// SubAccountRequest creates a sub-account or replaces its permissions.
// SubAccountID is ignored on creation.
type SubAccountRequest struct {
	SubAccountID string                     `json:"subAccountId,omitempty"`
	Name         string                     `json:"name,omitempty"`
	Permissions  []string                   `json:"permissions"`
	Limits       map[string]decimal.Decimal `json:"limits,omitempty"`
}

// SubAccountRef names one sub-account.
type SubAccountRef struct {
	SubAccountID string `json:"subAccountId"`
}

// ListSubAccountsResult lists sub-accounts by name.
type ListSubAccountsResult struct {
	SubAccounts []*model.SubAccount `json:"subAccounts"`
	Count       int                 `json:"count"`
}

// DeleteSubAccountResult confirms a deletion.
type DeleteSubAccountResult struct {
	SubAccountID string `json:"subAccountId"`
	Deleted      bool   `json:"deleted"`
}

// CreateSubAccount registers a delegated sub-account.
func (s *Service) CreateSubAccount(ctx context.Context, caller model.Identity, req SubAccountRequest) (res *model.SubAccount, err error) {
	ctx, span, err := s.begin(ctx, "createSubAccount", caller)
	defer func() { s.end(ctx, span, "createSubAccount", caller, err) }()
	if err != nil {
		return nil, err
	}

	perms, err := subaccount.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireGovernor(snap, caller); err != nil {
			return err
		}
		sa, err := subaccount.Create(req.Name, perms, req.Limits, now)
		if err != nil {
			return err
		}
		snap.SubAccounts[sa.ID] = sa
		res = sa
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: sub-account %s (%s) created by %s", caller.WalletID, res.Name, res.ID, caller.PublicKeyID)
	return res, nil
}

// ListSubAccounts returns every sub-account of the wallet.
func (s *Service) ListSubAccounts(ctx context.Context, caller model.Identity) (res *ListSubAccountsResult, err error) {
	ctx, span, err := s.begin(ctx, "listSubAccounts", caller)
	defer func() { s.end(ctx, span, "listSubAccounts", caller, err) }()
	if err != nil {
		return nil, err
	}

	snap, err := s.load(ctx, caller.WalletID)
	if err != nil {
		return nil, err
	}
	list := subaccount.List(snap.SubAccounts)
	return &ListSubAccountsResult{SubAccounts: list, Count: len(list)}, nil
}

// SetSubAccountPermissions replaces a sub-account's permissions and limits.
func (s *Service) SetSubAccountPermissions(ctx context.Context, caller model.Identity, req SubAccountRequest) (res *model.SubAccount, err error) {
	ctx, span, err := s.begin(ctx, "setSubAccountPermissions", caller)
	defer func() { s.end(ctx, span, "setSubAccountPermissions", caller, err) }()
	if err != nil {
		return nil, err
	}

	perms, err := subaccount.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, _ time.Time) error {
		if err := requireGovernor(snap, caller); err != nil {
			return err
		}
		sa, err := findSubAccount(snap, req.SubAccountID)
		if err != nil {
			return err
		}
		if _, err := subaccount.SetPermissions(sa, perms, req.Limits); err != nil {
			return err
		}
		res = sa
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: sub-account %s permissions replaced by %s", caller.WalletID, res.ID, caller.PublicKeyID)
	return res, nil
}

// DeleteSubAccount removes a sub-account. Proposals created on its behalf
// keep their reference.
func (s *Service) DeleteSubAccount(ctx context.Context, caller model.Identity, req SubAccountRef) (res *DeleteSubAccountResult, err error) {
	ctx, span, err := s.begin(ctx, "deleteSubAccount", caller)
	defer func() { s.end(ctx, span, "deleteSubAccount", caller, err) }()
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, _ time.Time) error {
		if err := requireGovernor(snap, caller); err != nil {
			return err
		}
		sa, err := findSubAccount(snap, req.SubAccountID)
		if err != nil {
			return err
		}
		delete(snap.SubAccounts, sa.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: sub-account %s deleted by %s", caller.WalletID, req.SubAccountID, caller.PublicKeyID)
	return &DeleteSubAccountResult{SubAccountID: req.SubAccountID, Deleted: true}, nil
}

// ResetSubAccountWindow zeroes a sub-account's usage counters.
func (s *Service) ResetSubAccountWindow(ctx context.Context, caller model.Identity, req SubAccountRef) (res *model.SubAccount, err error) {
	ctx, span, err := s.begin(ctx, "resetSubAccountWindow", caller)
	defer func() { s.end(ctx, span, "resetSubAccountWindow", caller, err) }()
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireGovernor(snap, caller); err != nil {
			return err
		}
		sa, err := findSubAccount(snap, req.SubAccountID)
		if err != nil {
			return err
		}
		subaccount.ResetWindow(sa, now)
		res = sa
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: sub-account %s usage window reset by %s", caller.WalletID, res.ID, caller.PublicKeyID)
	return res, nil
}
