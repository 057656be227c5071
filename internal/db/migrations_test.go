// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"

	_ "modernc.org/sqlite"
)

func TestRunMigrationsSqlite(t *testing.T) {
	dsn := "file:test_migrations?mode=memory&cache=shared"
	dbConn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer func() { _ = dbConn.Close() }()

	if err := RunMigrations(dbConn, "sqlite"); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	// Applying twice is a no-op.
	if err := RunMigrations(dbConn, "sqlite"); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}

	rows, err := dbConn.Query("SELECT version FROM schema_migrations")
	if err != nil {
		t.Fatalf("query schema_migrations failed: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("scan version failed: %v", err)
		}
		versions = append(versions, v)
	}

	want := map[string]bool{
		"000001_create_wallet_tables":             true,
		"000002_create_credentials_and_audit_log": true,
	}
	if len(versions) != len(want) {
		t.Fatalf("expected %d migrations applied, got %v", len(want), versions)
	}
	for _, v := range versions {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Fatalf("missing expected migrations: %v", want)
	}

	for _, table := range []string{"wallets", "signers", "proposals", "proposal_signatures", "sub_accounts", "policy_assets", "credentials", "audit_log"} {
		var n int
		if err := dbConn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("table %s not created: %v", table, err)
		}
	}
}

func TestEmbeddedMigrationsExistForEveryDialect(t *testing.T) {
	for _, dbType := range SupportedTypes {
		entries, err := embeddedMigrations.ReadDir("migrations/" + dbType)
		if err != nil {
			t.Fatalf("no migrations for %s: %v", dbType, err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 migrations for %s, got %d", dbType, len(entries))
		}
	}
}

func TestMySQLPolicyAssetsCompareByteForByte(t *testing.T) {
	data, err := embeddedMigrations.ReadFile("migrations/mysql/000001_create_wallet_tables.up.sql")
	if err != nil {
		t.Fatalf("read mysql migration: %v", err)
	}
	script := string(data)
	start := strings.Index(script, "CREATE TABLE IF NOT EXISTS policy_assets")
	if start < 0 {
		t.Fatalf("policy_assets table missing from mysql migration")
	}
	table := script[start:]
	if end := strings.Index(table, ");"); end >= 0 {
		table = table[:end]
	}
	for _, line := range strings.Split(table, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "asset ") && !strings.Contains(line, "COLLATE utf8mb4_bin") {
			t.Fatalf("asset column must use a binary collation, got %q", line)
		}
	}
	if !strings.Contains(table, "COLLATE utf8mb4_bin") {
		t.Fatalf("asset column declaration not found in %q", table)
	}
}

func TestPolicyAssetsDifferingOnlyInCaseAreDistinct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := model.NewSnapshot("treasury")
	snap.Policy = model.CompliancePolicy{Mode: model.ModeWhitelist, Assets: []string{"usdc", "USDC"}, UpdatedAt: testNow}
	if err := s.SaveSnapshot(ctx, "treasury", snap); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	got, err := s.LoadSnapshot(ctx, "treasury")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(got.Policy.Assets) != 2 || got.Policy.Assets[0] != "USDC" || got.Policy.Assets[1] != "usdc" {
		t.Fatalf("expected both asset spellings to survive, got %v", got.Policy.Assets)
	}
}

func TestSplitStatements(t *testing.T) {
	script := `-- leading comment
CREATE TABLE a (id TEXT);

CREATE TABLE b (id TEXT);
  ;
`
	got := splitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id TEXT)" || got[1] != "CREATE TABLE b (id TEXT)" {
		t.Fatalf("unexpected statements %q", got)
	}
}

func TestRunDBMaintenanceSqlite_Smoke(t *testing.T) {
	dsn := "file:test_maint?mode=memory&cache=shared"
	if err := RunDBMaintenance("sqlite", dsn); err != nil {
		t.Fatalf("RunDBMaintenance failed: %v", err)
	}
}
