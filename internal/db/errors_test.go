// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"testing"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

func TestMapDBError_DuplicateStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"mysql duplicate entry", errors.New("Error 1062: Duplicate entry 'x' for key 'PRIMARY'")},
		{"postgres unique violation", errors.New("ERROR: duplicate key value violates unique constraint \"credentials_pkey\" (SQLSTATE 23505)")},
		{"sqlite unique constraint", errors.New("UNIQUE constraint failed: credentials.id")},
		{"generic duplicate word", errors.New("duplicate row")},
		{"unique word present", errors.New("column has unique constraint")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mapped := MapDBError(c.err)
			if !errors.Is(mapped, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate for case %s, got: %v", c.name, mapped)
			}
		})
	}
}

func TestMapDBError_NonDuplicatePassthrough(t *testing.T) {
	e := errors.New("some network error")
	mapped := MapDBError(e)
	if mapped == nil {
		t.Fatalf("expected non-nil error for non-duplicate input")
	}
	if errors.Is(mapped, ErrDuplicate) {
		t.Fatalf("did not expect ErrDuplicate for non-duplicate error")
	}
	if mapped.Error() != e.Error() {
		t.Fatalf("expected original error to be returned unchanged, got: %v", mapped)
	}
	if MapDBError(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
}

func TestStorageErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := storageError("load wallet w", cause)
	if !errors.Is(err, model.ErrStorageUnavailable) {
		t.Fatalf("expected StorageUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay reachable")
	}
	if errors.Is(err, ErrDuplicate) {
		t.Fatalf("did not expect ErrDuplicate")
	}

	dup := storageError("insert", errors.New("UNIQUE constraint failed: wallets.id"))
	if !errors.Is(dup, ErrDuplicate) || !errors.Is(dup, model.ErrStorageUnavailable) {
		t.Fatalf("expected duplicate storage error, got %v", dup)
	}
	if storageError("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
