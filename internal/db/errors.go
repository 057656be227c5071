// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// ErrDuplicate is returned when attempting to insert a record that already exists.
var ErrDuplicate = errors.New("duplicate record")

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). The
// mapping is string based so no driver package is needed here.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}

// storageError wraps a backend failure so callers can match it with
// model.ErrStorageUnavailable. Duplicate violations stay reachable through
// errors.Is(err, ErrDuplicate).
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if mapped := MapDBError(err); errors.Is(mapped, ErrDuplicate) {
		err = errors.Join(ErrDuplicate, err)
	}
	return model.WrapError(model.CodeStorageUnavailable, err, "%s", op)
}
