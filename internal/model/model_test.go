// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"errors"
	"testing"
	"time"
)

func TestCredentialString(t *testing.T) {
	c := Credential{WalletID: "treasury", PublicKeyID: "GALICE"}
	if got := c.String(); got != "GALICE@treasury" {
		t.Errorf("unexpected Credential.String(): %q", got)
	}

	c.Label = "alice laptop"
	if got := c.String(); got != "alice laptop (GALICE@treasury)" {
		t.Errorf("unexpected Credential.String() with label: %q", got)
	}
}

func TestCredentialIdentity(t *testing.T) {
	c := Credential{ID: "c1", WalletID: "treasury", PublicKeyID: "GBOB"}
	id := c.Identity()
	if id.WalletID != "treasury" || id.PublicKeyID != "GBOB" {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestSecurityLevelRisk(t *testing.T) {
	cases := map[SecurityLevel]RiskLevel{
		SecurityHigh:     RiskLow,
		SecurityStandard: RiskMedium,
		SecurityLow:      RiskHigh,
		"":               RiskHigh,
	}
	for level, want := range cases {
		if got := level.Risk(); got != want {
			t.Errorf("%q.Risk() = %q, want %q", level, got, want)
		}
	}
}

func TestNormalizeAsset(t *testing.T) {
	cases := map[string]string{
		" XLM ":  NativeAsset,
		"native": NativeAsset,
		"Native": NativeAsset,
		" USDC ": "USDC",
		"usdc":   "usdc",
		"":       "",
	}
	for in, want := range cases {
		if got := NormalizeAsset(in); got != want {
			t.Errorf("NormalizeAsset(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPayloadAssets(t *testing.T) {
	swap := TxPayload{Type: TxSwap, SendAsset: "xlm", ReceiveAsset: "USDC"}
	got := swap.Assets()
	if len(got) != 2 || got[0] != NativeAsset || got[1] != "USDC" {
		t.Errorf("unexpected swap assets: %v", got)
	}

	same := TxPayload{Type: TxSwap, SendAsset: "XLM", ReceiveAsset: "native"}
	if got := same.Assets(); len(got) != 1 {
		t.Errorf("expected duplicate assets to collapse, got %v", got)
	}

	call := TxPayload{Type: TxContractCall, ContractID: "C1", Function: "f"}
	if got := call.Assets(); len(got) != 0 {
		t.Errorf("expected no assets for contract call, got %v", got)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := NewSnapshot("w")
	s.Registry = &SignerRegistry{Signers: []Signer{{PublicKeyID: "GA", Weight: 1}}, Threshold: 1}
	s.Proposals["p1"] = &Proposal{ID: "p1", Status: StatusPending, Signatures: map[string]time.Time{}}
	s.SubAccounts["s1"] = &SubAccount{ID: "s1", Name: "desk", Permissions: []Permission{PermView}}
	s.Policy.Assets = []string{"USDC"}

	c := s.Clone()
	c.Registry.Signers[0].Weight = 5
	c.Proposals["p1"].Signatures["GA"] = time.Now()
	c.SubAccounts["s1"].Permissions[0] = PermTrade
	c.Policy.Assets[0] = "DOGE"

	if s.Registry.Signers[0].Weight != 1 {
		t.Error("registry shared with clone")
	}
	if len(s.Proposals["p1"].Signatures) != 0 {
		t.Error("signatures shared with clone")
	}
	if s.SubAccounts["s1"].Permissions[0] != PermView {
		t.Error("permissions shared with clone")
	}
	if s.Policy.Assets[0] != "USDC" {
		t.Error("policy assets shared with clone")
	}
}

func TestErrorIsMatchesCode(t *testing.T) {
	err := NewError(CodeLimitExceeded, "over").With("limit", "100")
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatal("expected errors.Is to match by code")
	}
	if errors.Is(err, ErrPermissionDenied) {
		t.Fatal("unexpected match on a different code")
	}
	if err.Kind() != KindAuthorization {
		t.Fatalf("unexpected kind %q", err.Kind())
	}
}
