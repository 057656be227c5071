// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/uptrace/bun"
)

// ExportDataForBackup retrieves all data from the database for a backup.
func (s *BunStore) ExportDataForBackup(ctx context.Context) (*model.BackupData, error) {
	data := &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Wallets:       []*model.Snapshot{},
	}
	wallets, err := s.ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range wallets {
		snap, err := s.LoadSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		data.Wallets = append(data.Wallets, snap)
	}
	if data.Credentials, err = s.ListCredentials(ctx, ""); err != nil {
		return nil, err
	}
	entries, err := s.GetAuditLogEntries(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	// oldest first so a restore replays the log in order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	data.AuditLog = entries
	return data, nil
}

// ImportDataFromBackup wipes the database and restores it from data in one
// transaction.
func (s *BunStore) ImportDataFromBackup(ctx context.Context, data *model.BackupData) error {
	if err := checkBackup(data); err != nil {
		return err
	}
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range []string{"proposal_signatures", "proposals", "signers", "sub_accounts", "policy_assets", "wallets", "credentials", "audit_log"} {
			if _, err := ExecRaw(ctx, tx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return importRows(ctx, tx, data, nil, nil)
	})
	if err != nil {
		return storageError("import backup", err)
	}
	return nil
}

// IntegrateDataFromBackup adds the wallets and credentials of data that are
// not present yet. Existing records are left untouched. Audit entries are
// only carried over for wallets that were added.
func (s *BunStore) IntegrateDataFromBackup(ctx context.Context, data *model.BackupData) error {
	if err := checkBackup(data); err != nil {
		return err
	}
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		var wallets []string
		if err := tx.NewSelect().Model((*WalletModel)(nil)).Column("id").Scan(ctx, &wallets); err != nil {
			return fmt.Errorf("list wallets: %w", err)
		}
		var creds []string
		if err := tx.NewSelect().Model((*CredentialModel)(nil)).Column("id").Scan(ctx, &creds); err != nil {
			return fmt.Errorf("list credentials: %w", err)
		}
		return importRows(ctx, tx, data, toSet(wallets), toSet(creds))
	})
	if err != nil {
		return storageError("integrate backup", err)
	}
	return nil
}

func checkBackup(data *model.BackupData) error {
	if data == nil {
		return fmt.Errorf("backup data is nil")
	}
	if data.SchemaVersion > model.BackupSchemaVersion {
		return fmt.Errorf("backup schema version %d is newer than supported version %d", data.SchemaVersion, model.BackupSchemaVersion)
	}
	return nil
}

// importRows inserts the contents of data, skipping wallets and credentials
// listed in the skip sets.
func importRows(ctx context.Context, tx bun.Tx, data *model.BackupData, skipWallets, skipCreds map[string]bool) error {
	added := make(map[string]bool, len(data.Wallets))
	for _, snap := range data.Wallets {
		if snap == nil || snap.WalletID == "" || skipWallets[snap.WalletID] {
			continue
		}
		if err := insertSnapshot(ctx, tx, snap.WalletID, normalizeImported(snap)); err != nil {
			return fmt.Errorf("wallet %s: %w", snap.WalletID, err)
		}
		added[snap.WalletID] = true
	}
	for _, c := range data.Credentials {
		if skipCreds[c.ID] {
			continue
		}
		m := credentialToModel(c)
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return fmt.Errorf("credential %s: %w", c.ID, err)
		}
	}
	for _, e := range data.AuditLog {
		if skipWallets != nil && !added[e.WalletID] {
			continue
		}
		m := auditToModel(e)
		m.ID = 0
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			return fmt.Errorf("audit entry: %w", err)
		}
	}
	return nil
}

func normalizeImported(snap *model.Snapshot) *model.Snapshot {
	out := snap.Clone()
	if out.Policy.Mode == "" {
		out.Policy.Mode = model.ModeNone
	}
	return out
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
