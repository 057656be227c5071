// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// New initializes and returns a bun-backed Store for the given dbType and dsn.
func New(dbType, dsn string) (Store, error) {
	return NewStoreFromDSN(dbType, dsn)
}
