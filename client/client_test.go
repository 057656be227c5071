// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/identity"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/server"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/submit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *core.Service
	srv   *httptest.Server
	alice string
	bob   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := db.NewStoreFromDSN("sqlite", "file:client_"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	resolver := identity.NewResolver(st, bcrypt.MinCost)
	svc, err := core.NewService(core.Options{Store: st, Identity: resolver, Submitter: submit.DryRun{}})
	require.NoError(t, err)

	enroll := func(key string) string {
		_, secret, err := resolver.Enroll(context.Background(), identity.Enrollment{
			WalletID: "treasury", PublicKeyID: key, Password: security.FromString("password-" + key),
		})
		require.NoError(t, err)
		var out string
		_ = secret.Use(func(b []byte) error { out = string(b); return nil })
		return out
	}
	f := &fixture{svc: svc, alice: enroll("GALICE"), bob: enroll("GBOB")}
	f.srv = httptest.NewServer(server.NewRouter(svc))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) httpClient(t *testing.T, secret string) *Client {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Endpoint = f.srv.URL + "/"
	cfg.WalletID = "treasury"
	cfg.Secret = secret
	c, err := NewHTTP(cfg)
	require.NoError(t, err)
	return c
}

func runFlow(t *testing.T, alice, bob *Client) {
	t.Helper()
	ctx := context.Background()

	setup, err := alice.SetupMultiSig(ctx, core.SetupRequest{
		Signers:   []model.Signer{{PublicKeyID: "GALICE", Weight: 1}, {PublicKeyID: "GBOB", Weight: 1}},
		Threshold: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, setup.TotalWeight)

	_, err = alice.SetAssetPolicy(ctx, core.PolicyRequest{Mode: "whitelist", Assets: []string{"XLM"}})
	require.NoError(t, err)
	check, err := bob.CheckAssetCompliance(ctx, "USDC")
	require.NoError(t, err)
	assert.False(t, check.Compliant)

	sa, err := alice.CreateSubAccount(ctx, core.SubAccountRequest{
		Name:        "desk",
		Permissions: []string{"view", "trade"},
		Limits:      map[string]decimal.Decimal{"maxDailyTrade": decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	list, err := bob.ListSubAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	prop, err := alice.ProposeTransaction(ctx, core.ProposeRequest{
		TxPayload: model.TxPayload{Type: model.TxPayment, Destination: "GDEST", Amount: decimal.NewFromInt(5), Asset: "XLM"},
	})
	require.NoError(t, err)

	_, err = alice.ExecuteMultiSigTx(ctx, prop.ProposalID)
	assert.Equal(t, model.CodeInsufficientSignatures, CodeOf(err))

	_, err = bob.SignTransaction(ctx, prop.ProposalID)
	require.NoError(t, err)
	exec, err := bob.ExecuteMultiSigTx(ctx, prop.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExecuted, exec.Status)
	assert.Equal(t, "dryrun-"+prop.ProposalID, exec.LedgerTxID)

	props, err := alice.GetMultiSigProposals(ctx, core.ListProposalsRequest{})
	require.NoError(t, err)
	require.Len(t, props.Proposals, 1)
	assert.Equal(t, model.StatusExecuted, props.Proposals[0].Status)

	dash, err := bob.GetInstitutionalDashboard(ctx)
	require.NoError(t, err)
	assert.True(t, dash.Configured)
	assert.Equal(t, 1, dash.SubAccountCount)

	del, err := alice.DeleteSubAccount(ctx, sa.ID)
	require.NoError(t, err)
	assert.True(t, del.Deleted)
}

func TestHTTPClientFlow(t *testing.T) {
	f := newFixture(t)
	runFlow(t, f.httpClient(t, f.alice), f.httpClient(t, f.bob))
}

func TestLocalClientFlow(t *testing.T) {
	f := newFixture(t)
	runFlow(t, NewLocal(f.svc, "treasury", f.alice), NewLocal(f.svc, "treasury", f.bob))
}

func TestHTTPClientErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.httpClient(t, "nobody:wrong-password").GetAssetPolicy(ctx)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, model.CodeUnauthenticated, CodeOf(err))

	_, err = f.httpClient(t, f.alice).SignTransaction(ctx, "missing")
	assert.Equal(t, model.CodeMultiSigNotConfigured, CodeOf(err))

	err = f.httpClient(t, f.alice).Call(ctx, "noSuchOperation", nil, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, err.Error(), "UnknownOperation")

	_, err = NewHTTP(Config{WalletID: "treasury", Secret: "x"})
	assert.Error(t, err)
	_, err = NewHTTP(Config{Endpoint: f.srv.URL})
	assert.Error(t, err)
	assert.Empty(t, CodeOf(assert.AnError))
}

func TestOperations(t *testing.T) {
	f := newFixture(t)
	ops, err := Operations(context.Background(), f.srv.URL)
	require.NoError(t, err)
	assert.ElementsMatch(t, core.Operations(), ops)
}
