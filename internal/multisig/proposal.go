// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package multisig

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// ComplianceChecker is the part of the compliance gate execution needs.
type ComplianceChecker interface {
	Check(asset string) bool
}

// ProposeResult reports the standing of a freshly created proposal.
type ProposeResult struct {
	Proposal *model.Proposal
	Quorum   Quorum
}

// Propose validates the payload and records a new pending proposal with the
// proposer's signature already applied. A ttl of zero creates a proposal
// that never expires.
func Propose(reg *model.SignerRegistry, proposerID string, payload model.TxPayload, description string, now time.Time, ttl time.Duration) (ProposeResult, error) {
	if reg == nil {
		return ProposeResult{}, model.NewError(model.CodeMultiSigNotConfigured, "wallet has no signer registry")
	}
	if !IsSigner(reg, proposerID) {
		return ProposeResult{}, model.NewError(model.CodeNotASigner, "proposer is not a registered signer").With("publicKeyId", proposerID)
	}
	payload = NormalizePayload(payload)
	if err := ValidatePayload(payload); err != nil {
		return ProposeResult{}, err
	}

	now = now.UTC()
	p := &model.Proposal{
		ID:          uuid.NewString(),
		Payload:     payload,
		Description: strings.TrimSpace(description),
		Status:      model.StatusPending,
		Signatures:  map[string]time.Time{proposerID: now},
		CreatedAt:   now,
		CreatedBy:   proposerID,
	}
	if ttl > 0 {
		p.ExpiresAt = now.Add(ttl)
	}
	return ProposeResult{Proposal: p, Quorum: Evaluate(p, reg)}, nil
}

// checkPending rejects proposals that have left the pending state, and
// pending proposals whose lifetime has run out but have not been swept yet.
func checkPending(p *model.Proposal, now time.Time) error {
	if p.Status != model.StatusPending {
		return model.NewError(model.CodeProposalNotPending, "proposal is %s", p.Status).
			With("proposalId", p.ID).With("status", string(p.Status))
	}
	if p.IsExpired(now) {
		return model.NewError(model.CodeProposalNotPending, "proposal expired at %s", p.ExpiresAt.Format(time.RFC3339)).
			With("proposalId", p.ID).With("status", string(model.StatusExpired))
	}
	return nil
}

// Sign adds signerID's signature. Signing twice is an error, not a no-op.
func Sign(p *model.Proposal, reg *model.SignerRegistry, signerID string, now time.Time) (Quorum, error) {
	if !IsSigner(reg, signerID) {
		return Quorum{}, model.NewError(model.CodeNotASigner, "signer is not registered").With("publicKeyId", signerID)
	}
	if err := checkPending(p, now); err != nil {
		return Quorum{}, err
	}
	if _, ok := p.Signatures[signerID]; ok {
		q := Evaluate(p, reg)
		return q, model.NewError(model.CodeAlreadySigned, "signer already signed this proposal").
			With("publicKeyId", signerID).With("remainingWeight", q.RemainingWeight)
	}
	if p.Signatures == nil {
		p.Signatures = make(map[string]time.Time)
	}
	p.Signatures[signerID] = now.UTC()
	return Evaluate(p, reg), nil
}

// Execute authorizes the proposal for submission. Quorum is checked before
// compliance, so an under-signed proposal always reports
// InsufficientSignatures. On success the proposal is executed and its
// payload is returned for the submission collaborator.
func Execute(p *model.Proposal, reg *model.SignerRegistry, gate ComplianceChecker, now time.Time) (model.TxPayload, error) {
	if err := checkPending(p, now); err != nil {
		return model.TxPayload{}, err
	}
	q := Evaluate(p, reg)
	if !q.Met {
		return model.TxPayload{}, model.NewError(model.CodeInsufficientSignatures, "quorum not reached").
			With("currentWeight", q.CurrentWeight).With("threshold", q.Threshold).With("remainingWeight", q.RemainingWeight)
	}
	if gate != nil {
		for _, asset := range p.Payload.Assets() {
			if !gate.Check(asset) {
				return model.TxPayload{}, model.NewError(model.CodeComplianceViolation, "asset %q is not allowed by the active policy", asset).
					With("asset", asset)
			}
		}
	}
	p.Status = model.StatusExecuted
	p.ClosedAt = now.UTC()
	return p.Payload, nil
}

// Reject closes a pending proposal on behalf of a signer.
func Reject(p *model.Proposal, reg *model.SignerRegistry, signerID string, now time.Time) error {
	if !IsSigner(reg, signerID) {
		return model.NewError(model.CodeNotASigner, "signer is not registered").With("publicKeyId", signerID)
	}
	if err := checkPending(p, now); err != nil {
		return err
	}
	p.Status = model.StatusRejected
	p.ClosedAt = now.UTC()
	p.ClosedBy = signerID
	return nil
}

// Expire moves a pending proposal whose lifetime has elapsed to expired and
// reports whether it did so.
func Expire(p *model.Proposal, now time.Time) bool {
	if p.Status != model.StatusPending || !p.IsExpired(now) {
		return false
	}
	p.Status = model.StatusExpired
	p.ClosedAt = now.UTC()
	return true
}

// Filter narrows List output. A zero Filter matches everything.
type Filter struct {
	Status model.ProposalStatus
	Limit  int
}

// List returns proposals most recent first, optionally filtered by status.
// Ties on creation time are broken by id for a stable order.
func List(proposals map[string]*model.Proposal, f Filter) []*model.Proposal {
	out := make([]*model.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// CountByStatus tallies proposals per status; every status is present.
func CountByStatus(proposals map[string]*model.Proposal) map[model.ProposalStatus]int {
	out := make(map[model.ProposalStatus]int, len(model.ProposalStatuses))
	for _, st := range model.ProposalStatuses {
		out[st] = 0
	}
	for _, p := range proposals {
		out[p.Status]++
	}
	return out
}
