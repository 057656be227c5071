// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core contains the governance façade. The interfaces below describe
// its side-effect boundaries; everything else in the package composes the
// pure engine packages around them.
package core

import (
	"context"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
)

// SnapshotStore persists one wallet context as a unit. Implementations wrap
// backend failures in model.ErrStorageUnavailable. Loading an unknown wallet
// returns an empty snapshot, not an error.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, walletID string) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, walletID string, snap *model.Snapshot) error
	ListWallets(ctx context.Context) ([]string, error)
}

// IdentityResolver turns an authentication secret into the caller identity.
// Unknown or wrong secrets yield model.ErrUnauthenticated.
type IdentityResolver interface {
	Resolve(ctx context.Context, secret security.Secret) (model.Identity, error)
}

// Submitter hands an executed proposal's payload to the ledger and returns
// the ledger-assigned transaction id.
type Submitter interface {
	Submit(ctx context.Context, proposalID string, payload model.TxPayload) (string, error)
}

// Locker serializes fn against every other call holding the same key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// AuditWriter records one audit entry. Failures are logged by the caller
// and never fail the operation.
type AuditWriter interface {
	LogAction(ctx context.Context, e model.AuditEntry) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
