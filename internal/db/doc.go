// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db is the persistence layer of Soroban Trader.
//
// A single Bun-backed store serves SQLite, PostgreSQL and MySQL. Each wallet
// snapshot is spread across a handful of tables (wallets, signers, proposals,
// proposal_signatures, sub_accounts, policy_assets) and is always written as
// a unit inside one transaction, so a reader never observes half of a save.
//
// Schema changes live in embedded per-dialect migrations under
// migrations/<dbType>/ and are applied by RunMigrations when a store is
// opened. Applied versions are tracked in schema_migrations.
//
// Testing notes
//   - Prefer NewStoreFromDSN("sqlite", "file:<name>?mode=memory&cache=shared")
//     in tests that need real DB semantics and migrations.
//   - Driver errors leave this package wrapped in model.ErrStorageUnavailable;
//     unique violations additionally match ErrDuplicate.
package db // import "github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
