// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the governance aggregates shared by the engine
// packages, the persistence layer and the request surface.
package model // import "github.com/kaankacar/soroban-trader-skill-sub000/internal/model"

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SecurityLevel classifies how strict a registry's threshold is relative to
// its total signer weight.
type SecurityLevel string

const (
	SecurityLow      SecurityLevel = "LOW"
	SecurityStandard SecurityLevel = "STANDARD"
	SecurityHigh     SecurityLevel = "HIGH"
)

// RiskLevel is the inverse reading of SecurityLevel used by the dashboard.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Risk maps a security level onto its inverse risk level.
func (s SecurityLevel) Risk() RiskLevel {
	switch s {
	case SecurityHigh:
		return RiskLow
	case SecurityStandard:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Signer is one weighted key allowed to approve proposals.
type Signer struct {
	PublicKeyID string `json:"publicKeyId"`
	Weight      int    `json:"weight"`
	DisplayName string `json:"displayName,omitempty"`
}

// SignerRegistry is the weighted signer set and quorum threshold of a wallet.
type SignerRegistry struct {
	Signers   []Signer  `json:"signers"`
	Threshold int       `json:"threshold"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusExecuted ProposalStatus = "executed"
	StatusRejected ProposalStatus = "rejected"
	StatusExpired  ProposalStatus = "expired"
)

// ProposalStatuses lists every status in display order.
var ProposalStatuses = []ProposalStatus{StatusPending, StatusExecuted, StatusRejected, StatusExpired}

// ParseProposalStatus returns the status named by s and whether it is known.
func ParseProposalStatus(s string) (ProposalStatus, bool) {
	st := ProposalStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ProposalStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// TxType is the action a transaction payload declares.
type TxType string

const (
	TxPayment      TxType = "payment"
	TxSwap         TxType = "swap"
	TxTrustline    TxType = "trustline"
	TxContractCall TxType = "contract_call"
)

// TxPayload is the structured description of a transaction awaiting
// approval. Which fields are required depends on Type.
type TxPayload struct {
	Type         TxType          `json:"type" validate:"required,oneof=payment swap trustline contract_call"`
	Destination  string          `json:"destination,omitempty" validate:"omitempty,max=69"`
	Amount       decimal.Decimal `json:"amount"`
	Asset        string          `json:"asset,omitempty" validate:"omitempty,max=69"`
	SendAsset    string          `json:"sendAsset,omitempty" validate:"omitempty,max=69"`
	ReceiveAsset string          `json:"receiveAsset,omitempty" validate:"omitempty,max=69"`
	ContractID   string          `json:"contractId,omitempty"`
	Function     string          `json:"function,omitempty"`
	Args         []string        `json:"args,omitempty"`
	Memo         string          `json:"memo,omitempty" validate:"omitempty,max=28"`
}

// Assets returns the normalized, de-duplicated asset identifiers the
// payload touches, in declaration order.
func (p TxPayload) Assets() []string {
	var raw []string
	switch p.Type {
	case TxSwap:
		raw = []string{p.SendAsset, p.ReceiveAsset}
	default:
		raw = []string{p.Asset}
	}
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		n := NormalizeAsset(a)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// NativeAsset is the canonical identifier of the ledger's native asset.
const NativeAsset = "native"

// NormalizeAsset trims an asset identifier and folds the aliases of the
// native asset onto NativeAsset. Issued assets keep their case.
func NormalizeAsset(asset string) string {
	a := strings.TrimSpace(asset)
	switch strings.ToLower(a) {
	case "native", "xlm":
		return NativeAsset
	}
	return a
}

// Proposal is a pending request to perform a transaction, collecting
// signatures until quorum is reached.
type Proposal struct {
	ID           string               `json:"id"`
	Payload      TxPayload            `json:"txPayload"`
	Description  string               `json:"description,omitempty"`
	Status       ProposalStatus       `json:"status"`
	Signatures   map[string]time.Time `json:"signatures"`
	CreatedAt    time.Time            `json:"createdAt"`
	CreatedBy    string               `json:"createdBy"`
	ExpiresAt    time.Time            `json:"expiresAt,omitempty"`
	SubAccountID string               `json:"subAccountId,omitempty"`
	ClosedAt     time.Time            `json:"closedAt,omitempty"`
	ClosedBy     string               `json:"closedBy,omitempty"`
	LedgerTxID   string               `json:"ledgerTxId,omitempty"`
}

// IsExpired reports whether the proposal's lifetime has elapsed at now.
// Proposals without an expiry never expire.
func (p *Proposal) IsExpired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Clone returns a deep copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	out := *p
	out.Payload.Args = append([]string(nil), p.Payload.Args...)
	out.Signatures = make(map[string]time.Time, len(p.Signatures))
	for k, v := range p.Signatures {
		out.Signatures[k] = v
	}
	return &out
}

// Permission is one capability a sub-account may hold.
type Permission string

const (
	PermView     Permission = "view"
	PermTrade    Permission = "trade"
	PermWithdraw Permission = "withdraw"
	PermDeposit  Permission = "deposit"
)

// KnownPermissions is the capability enum.
var KnownPermissions = []Permission{PermView, PermTrade, PermWithdraw, PermDeposit}

// IsKnown reports whether p belongs to the capability enum.
func (p Permission) IsKnown() bool {
	for _, k := range KnownPermissions {
		if p == k {
			return true
		}
	}
	return false
}

// LimitName returns the name of the daily limit that bounds the permission,
// or "" when the permission carries no spending limit.
func (p Permission) LimitName() string {
	switch p {
	case PermTrade:
		return "maxDailyTrade"
	case PermWithdraw:
		return "maxDailyWithdraw"
	case PermDeposit:
		return "maxDailyDeposit"
	}
	return ""
}

// PermissionFor maps a payload type to the permission a sub-account needs to
// propose it.
func PermissionFor(t TxType) Permission {
	if t == TxPayment {
		return PermWithdraw
	}
	return PermTrade
}

// SubAccount is a delegated identity restricted by permissions and limits.
type SubAccount struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	Permissions     []Permission               `json:"permissions"`
	Limits          map[string]decimal.Decimal `json:"limits"`
	Usage           map[string]decimal.Decimal `json:"usage"`
	WindowStartedAt time.Time                  `json:"windowStartedAt"`
	CreatedAt       time.Time                  `json:"createdAt"`
}

// Has reports whether the sub-account holds the permission.
func (s *SubAccount) Has(p Permission) bool {
	for _, have := range s.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the sub-account.
func (s *SubAccount) Clone() *SubAccount {
	if s == nil {
		return nil
	}
	out := *s
	out.Permissions = append([]Permission(nil), s.Permissions...)
	out.Limits = cloneAmounts(s.Limits)
	out.Usage = cloneAmounts(s.Usage)
	return &out
}

func cloneAmounts(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// PolicyMode selects how the compliance policy's asset set is interpreted.
type PolicyMode string

const (
	ModeWhitelist PolicyMode = "whitelist"
	ModeBlacklist PolicyMode = "blacklist"
	ModeNone      PolicyMode = "none"
)

// CompliancePolicy is the single active asset policy of a wallet.
type CompliancePolicy struct {
	Mode      PolicyMode `json:"mode"`
	Assets    []string   `json:"assets"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// Snapshot is everything one wallet context owns. It is the unit the
// persistence collaborator loads and saves.
type Snapshot struct {
	WalletID    string                 `json:"walletId"`
	Registry    *SignerRegistry        `json:"registry,omitempty"`
	Proposals   map[string]*Proposal   `json:"proposals"`
	SubAccounts map[string]*SubAccount `json:"subAccounts"`
	Policy      CompliancePolicy       `json:"policy"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// NewSnapshot returns an empty wallet context with no registry and a
// permissive compliance policy.
func NewSnapshot(walletID string) *Snapshot {
	return &Snapshot{
		WalletID:    walletID,
		Proposals:   make(map[string]*Proposal),
		SubAccounts: make(map[string]*SubAccount),
		Policy:      CompliancePolicy{Mode: ModeNone, Assets: []string{}},
	}
}

// Clone returns a deep copy so callers can mutate it without touching the
// original until the copy has been durably saved.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot(s.WalletID)
	out.UpdatedAt = s.UpdatedAt
	if s.Registry != nil {
		reg := *s.Registry
		reg.Signers = append([]Signer(nil), s.Registry.Signers...)
		out.Registry = &reg
	}
	for id, p := range s.Proposals {
		out.Proposals[id] = p.Clone()
	}
	for id, sa := range s.SubAccounts {
		out.SubAccounts[id] = sa.Clone()
	}
	out.Policy = CompliancePolicy{
		Mode:      s.Policy.Mode,
		Assets:    append([]string{}, s.Policy.Assets...),
		UpdatedAt: s.Policy.UpdatedAt,
	}
	return out
}

// SubAccountNames returns the sub-account names sorted alphabetically.
func (s *Snapshot) SubAccountNames() []string {
	names := make([]string, 0, len(s.SubAccounts))
	for _, sa := range s.SubAccounts {
		names = append(names, sa.Name)
	}
	sort.Strings(names)
	return names
}

// Identity is the caller as resolved by the identity collaborator. Every
// operation trusts it as the acting wallet and signer key.
type Identity struct {
	WalletID    string `json:"walletId"`
	PublicKeyID string `json:"publicKeyId"`
}
