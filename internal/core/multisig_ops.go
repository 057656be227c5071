// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/compliance"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/multisig"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/subaccount"
)

// SetupRequest replaces the wallet's signer registry.
type SetupRequest struct {
	Signers   []model.Signer `json:"signers"`
	Threshold int            `json:"threshold"`
}

// SetupResult describes the registry now in force.
type SetupResult struct {
	Signers       []model.Signer      `json:"signers"`
	Threshold     int                 `json:"threshold"`
	TotalWeight   int                 `json:"totalWeight"`
	SecurityLevel model.SecurityLevel `json:"securityLevel"`
}

// ProposeRequest creates a proposal. When SubAccountID is set the
// sub-account's permissions and daily limits are charged for it.
type ProposeRequest struct {
	TxPayload    model.TxPayload `json:"txPayload"`
	Description  string          `json:"description,omitempty"`
	SubAccountID string          `json:"subAccountId,omitempty"`
}

// ProposeResult reports a new proposal's standing.
type ProposeResult struct {
	ProposalID      string               `json:"proposalId"`
	Status          model.ProposalStatus `json:"status"`
	CurrentWeight   int                  `json:"currentWeight"`
	RemainingWeight int                  `json:"remainingWeight"`
	Threshold       int                  `json:"threshold"`
	ExpiresAt       *time.Time           `json:"expiresAt,omitempty"`
}

// ProposalRef names one proposal.
type ProposalRef struct {
	ProposalID string `json:"proposalId"`
}

// SignResult reports the proposal's standing after a signature.
type SignResult struct {
	ProposalID      string               `json:"proposalId"`
	Status          model.ProposalStatus `json:"status"`
	CurrentWeight   int                  `json:"currentWeight"`
	RemainingWeight int                  `json:"remainingWeight"`
	QuorumMet       bool                 `json:"quorumMet"`
}

// ExecuteResult carries the authorized payload and the outcome of the
// ledger submission that followed. A failed submission does not undo the
// execution; it is reported in SubmissionError.
type ExecuteResult struct {
	ProposalID      string               `json:"proposalId"`
	Status          model.ProposalStatus `json:"status"`
	TxPayload       model.TxPayload      `json:"txPayload"`
	LedgerTxID      string               `json:"ledgerTxId,omitempty"`
	SubmissionError *ErrorBody           `json:"submissionError,omitempty"`
}

// ProposalStatusResult is returned by operations that only close a proposal.
type ProposalStatusResult struct {
	ProposalID string               `json:"proposalId"`
	Status     model.ProposalStatus `json:"status"`
}

// ListProposalsRequest filters getMultiSigProposals. Status "" or "all"
// matches every proposal.
type ListProposalsRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// ProposalView is a proposal with its quorum standing computed at read time.
type ProposalView struct {
	*model.Proposal
	CurrentWeight   int  `json:"currentWeight"`
	RemainingWeight int  `json:"remainingWeight"`
	QuorumMet       bool `json:"quorumMet"`
	Expired         bool `json:"expired"`
}

// ListProposalsResult lists proposals most recent first.
type ListProposalsResult struct {
	Proposals []ProposalView               `json:"proposals"`
	Counts    map[model.ProposalStatus]int `json:"counts"`
	Total     int                          `json:"total"`
}

// SetupMultiSig installs a new signer registry, replacing any previous one.
func (s *Service) SetupMultiSig(ctx context.Context, caller model.Identity, req SetupRequest) (res *SetupResult, err error) {
	ctx, span, err := s.begin(ctx, "setupMultiSig", caller)
	defer func() { s.end(ctx, span, "setupMultiSig", caller, err) }()
	if err != nil {
		return nil, err
	}

	var level model.SecurityLevel
	snap, err := s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireGovernor(snap, caller); err != nil {
			return err
		}
		reg, lvl, err := multisig.Setup(req.Signers, req.Threshold, now)
		if err != nil {
			return err
		}
		snap.Registry = reg
		level = lvl
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: signer registry set up by %s (%d signers, threshold %d, %s)",
		caller.WalletID, caller.PublicKeyID, len(snap.Registry.Signers), snap.Registry.Threshold, level)
	return &SetupResult{
		Signers:       snap.Registry.Signers,
		Threshold:     snap.Registry.Threshold,
		TotalWeight:   multisig.TotalWeight(snap.Registry),
		SecurityLevel: level,
	}, nil
}

// ProposeTransaction records a new pending proposal signed by the caller.
func (s *Service) ProposeTransaction(ctx context.Context, caller model.Identity, req ProposeRequest) (res *ProposeResult, err error) {
	ctx, span, err := s.begin(ctx, "proposeTransaction", caller)
	defer func() { s.end(ctx, span, "proposeTransaction", caller, err) }()
	if err != nil {
		return nil, err
	}

	var out multisig.ProposeResult
	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		r, err := multisig.Propose(snap.Registry, caller.PublicKeyID, req.TxPayload, req.Description, now, s.ttl)
		if err != nil {
			return err
		}
		if req.SubAccountID != "" {
			sa, err := findSubAccount(snap, req.SubAccountID)
			if err != nil {
				return err
			}
			perm := model.PermissionFor(r.Proposal.Payload.Type)
			if _, err := subaccount.Authorize(sa, perm, r.Proposal.Payload.Amount); err != nil {
				return err
			}
			r.Proposal.SubAccountID = sa.ID
		}
		snap.Proposals[r.Proposal.ID] = r.Proposal
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: proposal %s (%s) created by %s", caller.WalletID, out.Proposal.ID, out.Proposal.Payload.Type, caller.PublicKeyID)
	res = &ProposeResult{
		ProposalID:      out.Proposal.ID,
		Status:          out.Proposal.Status,
		CurrentWeight:   out.Quorum.CurrentWeight,
		RemainingWeight: out.Quorum.RemainingWeight,
		Threshold:       out.Quorum.Threshold,
	}
	if !out.Proposal.ExpiresAt.IsZero() {
		exp := out.Proposal.ExpiresAt
		res.ExpiresAt = &exp
	}
	return res, nil
}

// SignTransaction adds the caller's signature to a pending proposal.
func (s *Service) SignTransaction(ctx context.Context, caller model.Identity, req ProposalRef) (res *SignResult, err error) {
	ctx, span, err := s.begin(ctx, "signTransaction", caller)
	defer func() { s.end(ctx, span, "signTransaction", caller, err) }()
	if err != nil {
		return nil, err
	}

	var q multisig.Quorum
	var status model.ProposalStatus
	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireRegistry(snap); err != nil {
			return err
		}
		p, err := findProposal(snap, req.ProposalID)
		if err != nil {
			return err
		}
		q, err = multisig.Sign(p, snap.Registry, caller.PublicKeyID, now)
		if err != nil {
			return err
		}
		status = p.Status
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: proposal %s signed by %s (%d/%d)", caller.WalletID, req.ProposalID, caller.PublicKeyID, q.CurrentWeight, q.Threshold)
	return &SignResult{
		ProposalID:      req.ProposalID,
		Status:          status,
		CurrentWeight:   q.CurrentWeight,
		RemainingWeight: q.RemainingWeight,
		QuorumMet:       q.Met,
	}, nil
}

// ExecuteMultiSigTx executes a proposal that has reached quorum and passes
// the compliance policy, then submits its payload outside the wallet lock.
func (s *Service) ExecuteMultiSigTx(ctx context.Context, caller model.Identity, req ProposalRef) (res *ExecuteResult, err error) {
	ctx, span, err := s.begin(ctx, "executeMultiSigTx", caller)
	defer func() { s.end(ctx, span, "executeMultiSigTx", caller, err) }()
	if err != nil {
		return nil, err
	}

	var payload model.TxPayload
	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireRegistry(snap); err != nil {
			return err
		}
		p, err := findProposal(snap, req.ProposalID)
		if err != nil {
			return err
		}
		if !multisig.IsSigner(snap.Registry, caller.PublicKeyID) {
			return model.NewError(model.CodeNotASigner, "only registered signers may execute proposals").
				With("publicKeyId", caller.PublicKeyID)
		}
		payload, err = multisig.Execute(p, snap.Registry, compliance.Gate{Policy: snap.Policy}, now)
		if err != nil {
			return err
		}
		p.ClosedBy = caller.PublicKeyID
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: proposal %s executed by %s", caller.WalletID, req.ProposalID, caller.PublicKeyID)

	res = &ExecuteResult{ProposalID: req.ProposalID, Status: model.StatusExecuted, TxPayload: payload}
	if s.submitter == nil {
		return res, nil
	}
	txID, subErr := s.submitter.Submit(ctx, req.ProposalID, payload)
	if subErr != nil {
		logging.Warnf("wallet %s: submission of proposal %s failed: %v", caller.WalletID, req.ProposalID, subErr)
		var me *model.Error
		if !errors.As(subErr, &me) {
			me = model.WrapError(model.CodeSubmissionFailed, subErr, "ledger submission failed")
		}
		body := errorBody(me)
		res.SubmissionError = &body
		return res, nil
	}
	res.LedgerTxID = txID
	if recErr := s.recordLedgerTx(ctx, caller.WalletID, req.ProposalID, txID); recErr != nil {
		logging.Errorf("wallet %s: recording ledger tx %s for proposal %s failed: %v", caller.WalletID, txID, req.ProposalID, recErr)
	}
	return res, nil
}

func (s *Service) recordLedgerTx(ctx context.Context, walletID, proposalID, txID string) error {
	_, err := s.mutate(ctx, walletID, func(snap *model.Snapshot, _ time.Time) error {
		p, ok := snap.Proposals[proposalID]
		if !ok {
			return errNoChange
		}
		p.LedgerTxID = txID
		return nil
	})
	return err
}

// RejectProposal closes a pending proposal without executing it.
func (s *Service) RejectProposal(ctx context.Context, caller model.Identity, req ProposalRef) (res *ProposalStatusResult, err error) {
	ctx, span, err := s.begin(ctx, "rejectProposal", caller)
	defer func() { s.end(ctx, span, "rejectProposal", caller, err) }()
	if err != nil {
		return nil, err
	}

	_, err = s.mutate(ctx, caller.WalletID, func(snap *model.Snapshot, now time.Time) error {
		if err := requireRegistry(snap); err != nil {
			return err
		}
		p, err := findProposal(snap, req.ProposalID)
		if err != nil {
			return err
		}
		return multisig.Reject(p, snap.Registry, caller.PublicKeyID, now)
	})
	if err != nil {
		return nil, err
	}
	logging.Infof("wallet %s: proposal %s rejected by %s", caller.WalletID, req.ProposalID, caller.PublicKeyID)
	return &ProposalStatusResult{ProposalID: req.ProposalID, Status: model.StatusRejected}, nil
}

// GetMultiSigProposals lists proposals most recent first.
func (s *Service) GetMultiSigProposals(ctx context.Context, caller model.Identity, req ListProposalsRequest) (res *ListProposalsResult, err error) {
	ctx, span, err := s.begin(ctx, "getMultiSigProposals", caller)
	defer func() { s.end(ctx, span, "getMultiSigProposals", caller, err) }()
	if err != nil {
		return nil, err
	}

	f := multisig.Filter{Limit: req.Limit}
	if req.Status != "" && req.Status != "all" {
		st, ok := model.ParseProposalStatus(req.Status)
		if !ok {
			return nil, model.NewError(model.CodeInvalidRequest, "unknown status filter %q", req.Status).With("field", "status")
		}
		f.Status = st
	}
	if req.Limit < 0 {
		return nil, model.NewError(model.CodeInvalidRequest, "limit must not be negative").With("field", "limit")
	}

	snap, err := s.load(ctx, caller.WalletID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	list := multisig.List(snap.Proposals, f)
	res = &ListProposalsResult{
		Proposals: make([]ProposalView, 0, len(list)),
		Counts:    multisig.CountByStatus(snap.Proposals),
		Total:     len(snap.Proposals),
	}
	for _, p := range list {
		q := multisig.Evaluate(p, snap.Registry)
		res.Proposals = append(res.Proposals, ProposalView{
			Proposal:        p,
			CurrentWeight:   q.CurrentWeight,
			RemainingWeight: q.RemainingWeight,
			QuorumMet:       q.Met,
			Expired:         p.Status == model.StatusExpired || (p.Status == model.StatusPending && p.IsExpired(now)),
		})
	}
	return res, nil
}
