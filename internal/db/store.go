// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/uptrace/bun"
)

// Store defines every database operation Soroban Trader performs.
type Store interface {
	// Wallet snapshots
	LoadSnapshot(ctx context.Context, walletID string) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, walletID string, snap *model.Snapshot) error
	ListWallets(ctx context.Context) ([]string, error)

	// Credentials
	AddCredential(ctx context.Context, c model.Credential) error
	GetCredential(ctx context.Context, id string) (*model.Credential, error)
	ListCredentials(ctx context.Context, walletID string) ([]model.Credential, error)
	DeleteCredential(ctx context.Context, id string) error

	// Audit log
	LogAction(ctx context.Context, e model.AuditEntry) error
	GetAuditLogEntries(ctx context.Context, walletID string, limit int) ([]model.AuditEntry, error)

	// Backup
	ExportDataForBackup(ctx context.Context) (*model.BackupData, error)
	ImportDataFromBackup(ctx context.Context, data *model.BackupData) error
	IntegrateDataFromBackup(ctx context.Context, data *model.BackupData) error

	// Type returns the database type the store was opened with.
	Type() string
	// BunDB exposes the underlying Bun handle for maintenance and tests.
	BunDB() *bun.DB
	Close() error
}

// BunStore implements Store on top of a long-lived *bun.DB. The same code
// serves every supported dialect.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

var _ Store = (*BunStore)(nil)

// Type returns the database type.
func (s *BunStore) Type() string { return s.dbType }

// BunDB returns the underlying Bun handle.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Close closes the database.
func (s *BunStore) Close() error { return s.bun.Close() }
