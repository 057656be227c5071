// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	_ "modernc.org/sqlite"
)

// TestDBPoolDefaultsSQLite verifies that NewStoreFromDSN applies the default
// MaxOpenConns and returns a BunStore.
func TestDBPoolDefaultsSQLite(t *testing.T) {
	t.Setenv("SOROBAN_TRADER_DB_MAX_OPEN_CONNS", "")
	t.Setenv("SOROBAN_TRADER_DB_MAX_IDLE_CONNS", "")

	s, err := NewStoreFromDSN("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("NewStoreFromDSN returned error: %v", err)
	}
	defer func() { _ = s.Close() }()
	if s.Type() != "sqlite" {
		t.Fatalf("Type() = %q, want sqlite", s.Type())
	}
	stats := s.BunDB().DB.Stats()
	if stats.MaxOpenConnections != 25 {
		t.Fatalf("MaxOpenConnections = %d; want 25", stats.MaxOpenConnections)
	}
}

func TestDBPoolEnvOverride(t *testing.T) {
	t.Setenv("SOROBAN_TRADER_DB_MAX_OPEN_CONNS", "3")

	s, err := NewStoreFromDSN("sqlite", "file:TestDBPoolEnvOverride?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStoreFromDSN returned error: %v", err)
	}
	defer func() { _ = s.Close() }()
	if got := s.BunDB().DB.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("MaxOpenConnections = %d; want 3", got)
	}
}

func TestNewStoreFromDSN_UnsupportedType(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "dsn"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestCreateBunDB_VariousDialects(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	for _, c := range []string{"sqlite", "postgres", "mysql", "unknown"} {
		if b := createBunDB(sqlDB, c); b == nil {
			t.Fatalf("createBunDB returned nil for dialect %s", c)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{":memory:", ":memory:"},
		{"file:x?mode=memory&cache=shared", "file:x?mode=memory&cache=shared"},
		{"/tmp/trader.db", "/tmp/trader.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"},
		{"file:trader.db?cache=private", "file:trader.db?cache=private&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"},
		{"trader.db?_pragma=busy_timeout(100)", "trader.db?_pragma=busy_timeout(100)&_pragma=journal_mode(WAL)&_txlock=immediate"},
	}
	for _, c := range cases {
		if got := SQLiteDSN(c.in); got != c.want {
			t.Errorf("SQLiteDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFileStore_ConcurrentWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trader.db")
	s, err := NewStoreFromDSN("sqlite", path)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 8*20*2)
	for w := 0; w < 8; w++ {
		walletID := fmt.Sprintf("w%d", w)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				snap, err := s.LoadSnapshot(ctx, walletID)
				if err != nil {
					errs <- err
					continue
				}
				snap.Policy = model.CompliancePolicy{Mode: model.ModeBlacklist, Assets: []string{fmt.Sprintf("A%d", i)}, UpdatedAt: testNow}
				if err := s.SaveSnapshot(ctx, walletID, snap); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent wallet access failed: %v", err)
	}

	wallets, err := s.ListWallets(ctx)
	if err != nil {
		t.Fatalf("ListWallets failed: %v", err)
	}
	if len(wallets) != 8 {
		t.Fatalf("expected 8 wallets, got %v", wallets)
	}
}
