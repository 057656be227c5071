// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// AddCredential stores a new credential. A credential id that already exists
// yields an error matching ErrDuplicate.
func (s *BunStore) AddCredential(ctx context.Context, c model.Credential) error {
	m := credentialToModel(c)
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		if mapped := MapDBError(err); errors.Is(mapped, ErrDuplicate) {
			return fmt.Errorf("credential %s: %w", c.ID, ErrDuplicate)
		}
		return storageError("add credential", err)
	}
	return nil
}

// GetCredential returns the credential with the given id or ErrNotFound.
func (s *BunStore) GetCredential(ctx context.Context, id string) (*model.Credential, error) {
	var m CredentialModel
	err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageError("get credential", err)
	}
	c := credentialFromModel(m)
	return &c, nil
}

// ListCredentials returns the credentials of one wallet, or of every wallet
// when walletID is empty, ordered by wallet and id.
func (s *BunStore) ListCredentials(ctx context.Context, walletID string) ([]model.Credential, error) {
	var rows []CredentialModel
	q := s.bun.NewSelect().Model(&rows).Order("wallet_id ASC", "id ASC")
	if walletID != "" {
		q = q.Where("wallet_id = ?", walletID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storageError("list credentials", err)
	}
	out := make([]model.Credential, 0, len(rows))
	for _, m := range rows {
		out = append(out, credentialFromModel(m))
	}
	return out, nil
}

// DeleteCredential removes a credential. Deleting an unknown id yields
// ErrNotFound.
func (s *BunStore) DeleteCredential(ctx context.Context, id string) error {
	res, err := s.bun.NewDelete().Model((*CredentialModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return storageError("delete credential", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func credentialToModel(c model.Credential) CredentialModel {
	return CredentialModel{
		ID:          c.ID,
		WalletID:    c.WalletID,
		PublicKeyID: c.PublicKeyID,
		SecretHash:  c.SecretHash,
		Label:       c.Label,
		CreatedAt:   c.CreatedAt,
	}
}

func credentialFromModel(m CredentialModel) model.Credential {
	return model.Credential{
		ID:          m.ID,
		WalletID:    m.WalletID,
		PublicKeyID: m.PublicKeyID,
		SecretHash:  m.SecretHash,
		Label:       m.Label,
		CreatedAt:   m.CreatedAt,
	}
}
