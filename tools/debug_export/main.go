// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// debug_export seeds an in-memory store with a small governed wallet and
// prints the resulting backup document. It is used to eyeball the export
// format after schema changes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/backup"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/submit"
)

const walletID = "debug-wallet"

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "debug_export: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer) error {
	i18n.Init("en")
	st, err := db.NewStoreFromDSN("sqlite", "file:debug_export?mode=memory&cache=shared")
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	svc, err := core.NewService(core.Options{Store: st, Submitter: submit.DryRun{}, Audit: st})
	if err != nil {
		return err
	}
	alice := model.Identity{WalletID: walletID, PublicKeyID: "GALICE"}
	bob := model.Identity{WalletID: walletID, PublicKeyID: "GBOB"}

	steps := []struct {
		caller model.Identity
		op     string
		params any
	}{
		{alice, "setupMultiSig", map[string]any{
			"signers":   []map[string]any{{"publicKeyId": "GALICE", "weight": 1}, {"publicKeyId": "GBOB", "weight": 1}},
			"threshold": 2,
		}},
		{alice, "setAssetPolicy", map[string]any{"mode": "whitelist", "assets": []string{"XLM", "USDC"}}},
		{alice, "createSubAccount", map[string]any{"name": "desk", "permissions": []string{"view", "trade"}, "limits": map[string]string{"maxDailyTrade": "500"}}},
		{alice, "proposeTransaction", map[string]any{"txPayload": map[string]any{"type": "payment", "destination": "GDEST", "amount": "10", "asset": "XLM"}}},
	}
	var proposalID string
	for _, s := range steps {
		raw, err := json.Marshal(s.params)
		if err != nil {
			return err
		}
		resp := svc.HandleAs(ctx, s.caller, s.op, raw)
		if !resp.OK() {
			return fmt.Errorf("%s: %s", s.op, resp.Err.Error)
		}
		if res, ok := resp.Payload.(*core.ProposeResult); ok {
			proposalID = res.ProposalID
		}
	}
	signParams, _ := json.Marshal(map[string]string{"proposalId": proposalID})
	if resp := svc.HandleAs(ctx, bob, "signTransaction", signParams); !resp.OK() {
		return fmt.Errorf("signTransaction: %s", resp.Err.Error)
	}

	data, err := backup.Backup(ctx, st)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wallets: %d\n", len(data.Wallets))
	for _, snap := range data.Wallets {
		fmt.Fprintf(w, "wallet %s: %d proposals, %d sub-accounts, policy %s\n", snap.WalletID, len(snap.Proposals), len(snap.SubAccounts), snap.Policy.Mode)
	}
	fmt.Fprintf(w, "audit entries: %d\n", len(data.AuditLog))
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
