// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"time"
)

// Credential binds an authentication secret to a wallet and signer key. Only
// the bcrypt hash of the secret is stored.
type Credential struct {
	ID          string    `json:"id"`
	WalletID    string    `json:"wallet_id"`
	PublicKeyID string    `json:"public_key_id"`
	SecretHash  string    `json:"secret_hash"`
	Label       string    `json:"label,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity returns the caller identity the credential resolves to.
func (c Credential) Identity() Identity {
	return Identity{WalletID: c.WalletID, PublicKeyID: c.PublicKeyID}
}

// String returns the key@wallet representation, prefixed with the label
// when one is set.
func (c Credential) String() string {
	base := fmt.Sprintf("%s@%s", c.PublicKeyID, c.WalletID)
	if c.Label != "" {
		return fmt.Sprintf("%s (%s)", c.Label, base)
	}
	return base
}

// AuditEntry records one governance operation against a wallet.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	WalletID  string    `json:"wallet_id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	// Outcome is "ok" or the error code the operation failed with.
	Outcome string `json:"outcome"`
	Details string `json:"details,omitempty"`
}

// BackupSchemaVersion is written into every backup.
const BackupSchemaVersion = 1

// BackupData holds the full contents of the database.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int          `json:"schema_version"`
	CreatedAt     time.Time    `json:"created_at"`
	Wallets       []*Snapshot  `json:"wallets"`
	Credentials   []Credential `json:"credentials"`
	AuditLog      []AuditEntry `json:"audit_log_entries"`
}
