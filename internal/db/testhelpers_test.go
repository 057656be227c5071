// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"strings"
	"testing"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
)

func testDSN(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}

// newTestStore opens a migrated in-memory sqlite store that is closed when
// the test ends.
func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	s, err := NewStoreFromDSN("sqlite", testDSN(t))
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	bs, ok := s.(*BunStore)
	if !ok {
		t.Fatalf("store is not *BunStore")
	}
	return bs
}

// WithTestStore runs fn against a fresh in-memory sqlite store.
func WithTestStore(t *testing.T, fn func(s *BunStore)) {
	t.Helper()
	fn(newTestStore(t))
}

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleSnapshot(walletID string) *model.Snapshot {
	snap := model.NewSnapshot(walletID)
	snap.UpdatedAt = testNow
	snap.Registry = &model.SignerRegistry{
		Signers: []model.Signer{
			{PublicKeyID: "GCAROL", Weight: 1},
			{PublicKeyID: "GALICE", Weight: 2, DisplayName: "Alice"},
			{PublicKeyID: "GBOB", Weight: 1},
		},
		Threshold: 2,
		CreatedAt: testNow.Add(-time.Hour),
	}
	snap.Proposals["p-1"] = &model.Proposal{
		ID: "p-1",
		Payload: model.TxPayload{
			Type:        model.TxPayment,
			Destination: "GDEST",
			Amount:      decimal.RequireFromString("125.5"),
			Asset:       "USDC",
			Memo:        "invoice 7",
		},
		Description: "supplier payment",
		Status:      model.StatusPending,
		Signatures:  map[string]time.Time{"GALICE": testNow},
		CreatedAt:   testNow,
		CreatedBy:   "GALICE",
		ExpiresAt:   testNow.Add(24 * time.Hour),
	}
	snap.Proposals["p-2"] = &model.Proposal{
		ID:         "p-2",
		Payload:    model.TxPayload{Type: model.TxContractCall, ContractID: "CABC", Function: "rebalance", Args: []string{"1", "2"}},
		Status:     model.StatusExecuted,
		Signatures: map[string]time.Time{"GALICE": testNow, "GBOB": testNow.Add(time.Minute)},
		CreatedAt:  testNow,
		CreatedBy:  "GBOB",
		ClosedAt:   testNow.Add(2 * time.Minute),
		ClosedBy:   "GALICE",
		LedgerTxID: "tx-99",
	}
	snap.SubAccounts["s-1"] = &model.SubAccount{
		ID:              "s-1",
		Name:            "Trading desk",
		Permissions:     []model.Permission{model.PermTrade, model.PermView},
		Limits:          map[string]decimal.Decimal{"maxDailyTrade": decimal.RequireFromString("1000")},
		Usage:           map[string]decimal.Decimal{"maxDailyTrade": decimal.RequireFromString("250.25")},
		WindowStartedAt: testNow,
		CreatedAt:       testNow.Add(-time.Hour),
	}
	snap.Policy = model.CompliancePolicy{Mode: model.ModeWhitelist, Assets: []string{"USDC", "native"}, UpdatedAt: testNow}
	return snap
}
