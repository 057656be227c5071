// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// LogAction records an audit trail event. A zero timestamp is replaced by
// the current time.
func (s *BunStore) LogAction(ctx context.Context, e model.AuditEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	m := auditToModel(e)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return storageError("log action", err)
	}
	return nil
}

// GetAuditLogEntries returns audit entries, most recent first. An empty
// walletID selects every wallet; a limit of zero or less means no limit.
func (s *BunStore) GetAuditLogEntries(ctx context.Context, walletID string, limit int) ([]model.AuditEntry, error) {
	var rows []AuditLogModel
	q := s.bun.NewSelect().Model(&rows).Order("created_at DESC", "id DESC")
	if walletID != "" {
		q = q.Where("wallet_id = ?", walletID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storageError("read audit log", err)
	}
	out := make([]model.AuditEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, auditFromModel(m))
	}
	return out, nil
}

func auditToModel(e model.AuditEntry) AuditLogModel {
	return AuditLogModel{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		WalletID:  e.WalletID,
		Actor:     e.Actor,
		Action:    e.Action,
		Outcome:   e.Outcome,
		Details:   e.Details,
	}
}

func auditFromModel(m AuditLogModel) model.AuditEntry {
	return model.AuditEntry{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		WalletID:  m.WalletID,
		Actor:     m.Actor,
		Action:    m.Action,
		Outcome:   m.Outcome,
		Details:   m.Details,
	}
}
