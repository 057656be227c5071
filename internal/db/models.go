// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/uptrace/bun"
)

// WalletModel maps the `wallets` table. The registry threshold and the
// policy mode live on the wallet row.
type WalletModel struct {
	bun.BaseModel     `bun:"table:wallets"`
	ID                string    `bun:"id,pk"`
	Configured        bool      `bun:"configured"`
	Threshold         int       `bun:"threshold"`
	RegistryCreatedAt time.Time `bun:"registry_created_at,nullzero"`
	PolicyMode        string    `bun:"policy_mode"`
	PolicyUpdatedAt   time.Time `bun:"policy_updated_at,nullzero"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero"`
}

// SignerModel maps the `signers` table.
type SignerModel struct {
	bun.BaseModel `bun:"table:signers"`
	WalletID      string `bun:"wallet_id,pk"`
	PublicKeyID   string `bun:"public_key_id,pk"`
	Weight        int    `bun:"weight"`
	DisplayName   string `bun:"display_name"`
	SortOrder     int    `bun:"sort_order"`
}

// ProposalModel maps the `proposals` table. The payload is stored as JSON.
type ProposalModel struct {
	bun.BaseModel `bun:"table:proposals"`
	WalletID      string    `bun:"wallet_id,pk"`
	ID            string    `bun:"id,pk"`
	Status        string    `bun:"status"`
	Payload       string    `bun:"payload"`
	Description   string    `bun:"description"`
	CreatedAt     time.Time `bun:"created_at"`
	CreatedBy     string    `bun:"created_by"`
	ExpiresAt     time.Time `bun:"expires_at,nullzero"`
	SubAccountID  string    `bun:"sub_account_id"`
	ClosedAt      time.Time `bun:"closed_at,nullzero"`
	ClosedBy      string    `bun:"closed_by"`
	LedgerTxID    string    `bun:"ledger_tx_id"`
}

// SignatureModel maps the `proposal_signatures` table.
type SignatureModel struct {
	bun.BaseModel `bun:"table:proposal_signatures"`
	WalletID      string    `bun:"wallet_id,pk"`
	ProposalID    string    `bun:"proposal_id,pk"`
	PublicKeyID   string    `bun:"public_key_id,pk"`
	SignedAt      time.Time `bun:"signed_at"`
}

// SubAccountModel maps the `sub_accounts` table. Permissions are stored
// comma separated; limits and usage as JSON objects of decimal strings.
type SubAccountModel struct {
	bun.BaseModel   `bun:"table:sub_accounts"`
	WalletID        string    `bun:"wallet_id,pk"`
	ID              string    `bun:"id,pk"`
	Name            string    `bun:"name"`
	Permissions     string    `bun:"permissions"`
	SpendLimits     string    `bun:"spend_limits"`
	UsageAmounts    string    `bun:"usage_amounts"`
	WindowStartedAt time.Time `bun:"window_started_at,nullzero"`
	CreatedAt       time.Time `bun:"created_at"`
}

// PolicyAssetModel maps the `policy_assets` table.
type PolicyAssetModel struct {
	bun.BaseModel `bun:"table:policy_assets"`
	WalletID      string `bun:"wallet_id,pk"`
	Asset         string `bun:"asset,pk"`
}

// CredentialModel maps the `credentials` table.
type CredentialModel struct {
	bun.BaseModel `bun:"table:credentials"`
	ID            string    `bun:"id,pk"`
	WalletID      string    `bun:"wallet_id"`
	PublicKeyID   string    `bun:"public_key_id"`
	SecretHash    string    `bun:"secret_hash"`
	Label         string    `bun:"label"`
	CreatedAt     time.Time `bun:"created_at"`
}

// AuditLogModel maps the `audit_log` table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"created_at"`
	WalletID      string    `bun:"wallet_id"`
	Actor         string    `bun:"actor"`
	Action        string    `bun:"action"`
	Outcome       string    `bun:"outcome"`
	Details       string    `bun:"details"`
}
