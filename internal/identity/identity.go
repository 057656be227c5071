// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package identity resolves request secrets into caller identities.
//
// A secret has the form "<credentialID>:<password>". The credential id
// selects one stored record; the password is checked against its bcrypt
// hash.
package identity // import "github.com/kaankacar/soroban-trader-skill-sub000/internal/identity"

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Enroll accepts.
const MinPasswordLength = 8

// CredentialStore is the subset of db.Store the resolver needs.
type CredentialStore interface {
	AddCredential(ctx context.Context, c model.Credential) error
	GetCredential(ctx context.Context, id string) (*model.Credential, error)
}

// Resolver implements core.IdentityResolver on top of stored credentials.
type Resolver struct {
	store CredentialStore
	cost  int
	now   func() time.Time
}

// NewResolver returns a resolver using the given bcrypt cost. A cost of
// zero selects bcrypt.DefaultCost.
func NewResolver(store CredentialStore, cost int) *Resolver {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Resolver{store: store, cost: cost, now: func() time.Time { return time.Now().UTC() }}
}

// Resolve checks secret against the stored credential it names.
func (r *Resolver) Resolve(ctx context.Context, secret security.Secret) (model.Identity, error) {
	var id model.Identity
	err := secret.Use(func(b []byte) error {
		credID, password, ok := SplitSecret(string(b))
		if !ok {
			return model.NewError(model.CodeUnauthenticated, "malformed authentication secret")
		}
		c, err := r.store.GetCredential(ctx, credID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return model.NewError(model.CodeUnauthenticated, "invalid credentials")
			}
			return model.WrapError(model.CodeStorageUnavailable, err, "credential lookup failed")
		}
		if bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(password)) != nil {
			return model.NewError(model.CodeUnauthenticated, "invalid credentials")
		}
		id = c.Identity()
		return nil
	})
	if err != nil {
		return model.Identity{}, err
	}
	return id, nil
}

// Enrollment describes a credential to create.
type Enrollment struct {
	WalletID    string
	PublicKeyID string
	Label       string
	// Password is generated when empty.
	Password security.Secret
}

// Enroll stores a new credential and returns it together with the full
// secret callers must present. The secret is only available here.
func (r *Resolver) Enroll(ctx context.Context, e Enrollment) (model.Credential, security.Secret, error) {
	if strings.TrimSpace(e.WalletID) == "" {
		return model.Credential{}, nil, model.NewError(model.CodeInvalidRequest, "wallet id is required").With("field", "walletId")
	}
	if strings.TrimSpace(e.PublicKeyID) == "" {
		return model.Credential{}, nil, model.NewError(model.CodeInvalidRequest, "public key id is required").With("field", "publicKeyId")
	}
	password := e.Password
	if password.Empty() {
		generated, err := GeneratePassword()
		if err != nil {
			return model.Credential{}, nil, err
		}
		password = generated
	}
	var hash []byte
	err := password.Use(func(b []byte) error {
		if len(b) < MinPasswordLength {
			return model.NewError(model.CodeInvalidRequest, "password must be at least %d characters", MinPasswordLength).
				With("minLength", MinPasswordLength)
		}
		var herr error
		hash, herr = bcrypt.GenerateFromPassword(b, r.cost)
		return herr
	})
	if err != nil {
		return model.Credential{}, nil, err
	}

	c := model.Credential{
		ID:          uuid.NewString(),
		WalletID:    strings.TrimSpace(e.WalletID),
		PublicKeyID: strings.TrimSpace(e.PublicKeyID),
		SecretHash:  string(hash),
		Label:       strings.TrimSpace(e.Label),
		CreatedAt:   r.now(),
	}
	if err := r.store.AddCredential(ctx, c); err != nil {
		return model.Credential{}, nil, err
	}
	var secret security.Secret
	_ = password.Use(func(b []byte) error {
		secret = JoinSecret(c.ID, b)
		return nil
	})
	return c, secret, nil
}

// SplitSecret splits "<credentialID>:<password>" at the first colon.
func SplitSecret(s string) (credID, password string, ok bool) {
	credID, password, ok = strings.Cut(s, ":")
	if !ok || credID == "" || password == "" {
		return "", "", false
	}
	return credID, password, true
}

// JoinSecret builds the secret presented for credential credID.
func JoinSecret(credID string, password []byte) security.Secret {
	out := make([]byte, 0, len(credID)+1+len(password))
	out = append(out, credID...)
	out = append(out, ':')
	out = append(out, password...)
	return security.FromBytes(out)
}

// GeneratePassword returns 24 random bytes encoded as unpadded base64url.
func GeneratePassword() (security.Secret, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return security.FromString(base64.RawURLEncoding.EncodeToString(raw)), nil
}
