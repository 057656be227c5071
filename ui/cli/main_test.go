// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// setupTestStore isolates config discovery in a temp dir and installs a
// fresh in-memory store.
func setupTestStore(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Setenv(SecretEnv, "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	dsn := fmt.Sprintf("file:cli_%d?mode=memory&cache=shared", time.Now().UnixNano())
	st, err := db.NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	appStore = st
	passwordCost = bcrypt.MinCost
	isTerminal = func() bool { return false }

	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = st.Close()
		appStore = nil
		passwordCost = 0
	})
}

// executeCommand runs a fresh root command and returns its combined output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := executeCommand(t, stdin, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

var secretLine = regexp.MustCompile(`Secret: (\S+)`)

func enroll(t *testing.T, wallet, key, password string) string {
	t.Helper()
	out := mustExecute(t, password+"\n", "identity", "add", "-w", wallet, "--public-key", key, "--password-stdin")
	m := secretLine.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no secret in output: %s", out)
	}
	if !strings.HasSuffix(m[1], ":"+password) {
		t.Fatalf("secret %q does not end in the password", m[1])
	}
	return m[1]
}

func TestMultiSigFlow(t *testing.T) {
	setupTestStore(t)
	alice := enroll(t, "treasury", "GALICE", "alice-password")
	bob := enroll(t, "treasury", "GBOB", "bob-password")

	out := mustExecute(t, "", "multisig", "setup", "-w", "treasury", "--secret", alice,
		"--signer", "GALICE:1:Alice", "--signer", "GBOB:1", "--signer", "GCAROL:1", "--threshold", "2")
	if !strings.Contains(out, "security level STANDARD") {
		t.Fatalf("expected setup confirmation, got: %s", out)
	}
	if !strings.Contains(out, "GCAROL") {
		t.Fatalf("expected signer table, got: %s", out)
	}

	out = mustExecute(t, "", "multisig", "propose", "-w", "treasury", "--secret", alice, "-o", "json",
		"--type", "payment", "--destination", "GDEST", "--amount", "25.5", "--asset", "native", "--description", "payroll")
	var proposed struct {
		ProposalID      string `json:"proposalId"`
		RemainingWeight int    `json:"remainingWeight"`
	}
	if err := json.Unmarshal([]byte(out), &proposed); err != nil {
		t.Fatalf("propose output is not JSON: %v\n%s", err, out)
	}
	if proposed.ProposalID == "" || proposed.RemainingWeight != 1 {
		t.Fatalf("unexpected proposal: %+v", proposed)
	}

	out, err := executeCommand(t, "", "multisig", "execute", proposed.ProposalID, "-w", "treasury", "--secret", alice)
	var oe *opError
	if !errors.As(err, &oe) || oe.body.Code != model.CodeInsufficientSignatures {
		t.Fatalf("expected InsufficientSignatures, got %v", err)
	}
	if !strings.Contains(out, "Collect more signatures") {
		t.Fatalf("expected recommendation, got: %s", out)
	}

	out = mustExecute(t, "", "multisig", "sign", proposed.ProposalID, "-w", "treasury", "--secret", bob)
	if !strings.Contains(out, "Signed proposal "+proposed.ProposalID) {
		t.Fatalf("expected sign confirmation, got: %s", out)
	}

	out = mustExecute(t, "", "multisig", "execute", proposed.ProposalID, "-w", "treasury", "--secret", bob)
	if !strings.Contains(out, "executed") || !strings.Contains(out, "dryrun-"+proposed.ProposalID) {
		t.Fatalf("expected execution with ledger id, got: %s", out)
	}

	out = mustExecute(t, "", "multisig", "list", "-w", "treasury", "--secret", alice)
	if !strings.Contains(out, proposed.ProposalID) || !strings.Contains(out, "executed") {
		t.Fatalf("expected executed proposal in list, got: %s", out)
	}

	_, err = executeCommand(t, "", "multisig", "reject", proposed.ProposalID, "-w", "treasury", "--secret", alice)
	if !errors.As(err, &oe) || oe.body.Code != model.CodeProposalNotPending {
		t.Fatalf("expected ProposalNotPending, got %v", err)
	}

	out = mustExecute(t, "", "audit", "-w", "treasury")
	for _, want := range []string{"setupMultiSig", "proposeTransaction", "signTransaction", "executeMultiSigTx", "InsufficientSignatures"} {
		if !strings.Contains(out, want) {
			t.Fatalf("audit log misses %s:\n%s", want, out)
		}
	}
}

func TestSecretFromEnvironmentAndMissing(t *testing.T) {
	setupTestStore(t)
	alice := enroll(t, "ops", "GALICE", "alice-password")

	_, err := executeCommand(t, "", "dashboard", "-w", "ops")
	if err == nil || !strings.Contains(err.Error(), "no secret given") {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	t.Setenv(SecretEnv, alice)
	out := mustExecute(t, "", "dashboard", "-w", "ops")
	if !strings.Contains(out, "Institutional Dashboard") || !strings.Contains(out, "ops") {
		t.Fatalf("expected dashboard, got: %s", out)
	}
	if !strings.Contains(out, "multi-signature not configured") {
		t.Fatalf("expected unconfigured marker, got: %s", out)
	}

	_, err = executeCommand(t, "", "dashboard", "-w", "treasury")
	var oe *opError
	if !errors.As(err, &oe) || oe.body.Code != model.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated for foreign wallet, got %v", err)
	}
}

func TestSubAccountAndPolicyCommands(t *testing.T) {
	setupTestStore(t)
	alice := enroll(t, "desk", "GALICE", "alice-password")
	t.Setenv(SecretEnv, alice)
	mustExecute(t, "", "multisig", "setup", "-w", "desk", "--signer", "GALICE:1", "--threshold", "1")

	out := mustExecute(t, "", "subaccount", "create", "-w", "desk", "--name", "desk-eu", "-p", "view", "-p", "trade", "--limit", "maxDailyTrade=100")
	if !strings.Contains(out, "Sub-account desk-eu created") {
		t.Fatalf("expected create confirmation, got: %s", out)
	}
	out = mustExecute(t, "", "subaccount", "list", "-w", "desk")
	if !strings.Contains(out, "desk-eu") || !strings.Contains(out, "trade,view") || !strings.Contains(out, "maxDailyTrade 0/100") {
		t.Fatalf("expected sub-account row, got: %s", out)
	}

	_, err := executeCommand(t, "", "subaccount", "create", "-w", "desk", "--name", "ab")
	var oe *opError
	if !errors.As(err, &oe) || oe.body.Code != model.CodeNameTooShort {
		t.Fatalf("expected NameTooShort, got %v", err)
	}

	out = mustExecute(t, "", "policy", "set", "-w", "desk", "--mode", "whitelist", "--asset", "native")
	if !strings.Contains(out, "Policy set to whitelist with 1 assets") {
		t.Fatalf("expected policy confirmation, got: %s", out)
	}
	out = mustExecute(t, "", "policy", "check", "native", "-w", "desk")
	if !strings.Contains(out, "native is compliant") {
		t.Fatalf("expected compliant, got: %s", out)
	}
	out = mustExecute(t, "", "policy", "check", "USDC:GISSUER", "-w", "desk")
	if !strings.Contains(out, "is not compliant") {
		t.Fatalf("expected not compliant, got: %s", out)
	}
	out = mustExecute(t, "", "policy", "show", "-w", "desk")
	if !strings.Contains(out, "whitelist") || !strings.Contains(out, "- native") {
		t.Fatalf("expected policy listing, got: %s", out)
	}
}

func TestCallCommand(t *testing.T) {
	setupTestStore(t)
	alice := enroll(t, "treasury", "GALICE", "alice-password")

	// Any caller of the wallet may set the policy before a registry exists.
	mustExecute(t, `{"mode":"blacklist","assets":["BAD:GX"]}`, "call", "setAssetPolicy", "-", "-w", "treasury", "--secret", alice)
	out := mustExecute(t, "", "call", "getAssetPolicy", "-w", "treasury", "--secret", alice)
	var pol model.CompliancePolicy
	if err := json.Unmarshal([]byte(out), &pol); err != nil {
		t.Fatalf("expected JSON, got %v\n%s", err, out)
	}
	if pol.Mode != model.ModeBlacklist || len(pol.Assets) != 1 {
		t.Fatalf("unexpected policy %+v", pol)
	}

	out, err := executeCommand(t, "", "call", "launchRockets", "{}", "-w", "treasury", "--secret", alice)
	if err == nil || !strings.Contains(out, `"code": "UnknownOperation"`) {
		t.Fatalf("expected UnknownOperation JSON error, got %v\n%s", err, out)
	}
}

func TestIdentityListAndRemove(t *testing.T) {
	setupTestStore(t)
	secret := enroll(t, "treasury", "GALICE", "alice-password")
	credID := strings.SplitN(secret, ":", 2)[0]
	enroll(t, "ops", "GBOB", "bob-password")

	out := mustExecute(t, "", "identity", "list", "-w", "treasury")
	if !strings.Contains(out, credID) || strings.Contains(out, "GBOB") {
		t.Fatalf("expected only the treasury credential, got: %s", out)
	}
	if strings.Contains(out, "alice-password") {
		t.Fatalf("list must not reveal passwords: %s", out)
	}

	mustExecute(t, "", "identity", "remove", credID)
	_, err := executeCommand(t, "", "dashboard", "-w", "treasury", "--secret", secret)
	var oe *opError
	if !errors.As(err, &oe) || oe.body.Code != model.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated after removal, got %v", err)
	}

	out = mustExecute(t, "", "identity", "add", "-w", "treasury", "--public-key", "GCAROL")
	if !secretLine.MatchString(out) {
		t.Fatalf("expected generated secret, got: %s", out)
	}
	if _, err := executeCommand(t, "short\n", "identity", "add", "-w", "treasury", "--public-key", "GDAVE", "--password-stdin"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}

func TestBackupRestoreAndSweep(t *testing.T) {
	setupTestStore(t)
	alice := enroll(t, "treasury", "GALICE", "alice-password")
	t.Setenv(SecretEnv, alice)
	mustExecute(t, "", "multisig", "setup", "-w", "treasury", "--signer", "GALICE:1", "--threshold", "1")

	file := filepath.Join(t.TempDir(), "backup.json.zst")
	out := mustExecute(t, "", "backup", file)
	if !strings.Contains(out, "Backup of 1 wallets written") {
		t.Fatalf("expected backup confirmation, got: %s", out)
	}

	out = mustExecute(t, "", "restore", file)
	if !strings.Contains(out, "Restored 1 wallets") {
		t.Fatalf("expected restore confirmation, got: %s", out)
	}
	out = mustExecute(t, "", "restore", "--full", file)
	if !strings.Contains(out, "Restored 1 wallets") {
		t.Fatalf("expected full restore confirmation, got: %s", out)
	}
	// Credentials survive the full restore.
	mustExecute(t, "", "dashboard", "-w", "treasury")

	out = mustExecute(t, "", "sweep", "-o", "json")
	var rep struct {
		Wallets int `json:"wallets"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil || rep.Wallets != 1 {
		t.Fatalf("unexpected sweep report %q (%v)", out, err)
	}

	if _, err := executeCommand(t, "", "restore", filepath.Join(t.TempDir(), "missing.zst")); err == nil {
		t.Fatalf("expected error for missing backup file")
	}
}

func TestMigrateCommand(t *testing.T) {
	setupTestStore(t)
	enroll(t, "treasury", "GALICE", "alice-password")

	target := filepath.Join(t.TempDir(), "target.db")
	out := mustExecute(t, "", "migrate", "--to-type", "sqlite", "--to-dsn", target)
	if !strings.Contains(out, "Migrated sqlite database to sqlite") {
		t.Fatalf("expected migrate confirmation, got: %s", out)
	}
	dst, err := db.NewStoreFromDSN("sqlite", target)
	if err != nil {
		t.Fatalf("open target: %v", err)
	}
	defer func() { _ = dst.Close() }()
	creds, err := dst.ListCredentials(t.Context(), "treasury")
	if err != nil || len(creds) != 1 {
		t.Fatalf("expected migrated credential, got %v (%v)", creds, err)
	}

	if _, err := executeCommand(t, "", "migrate"); err == nil {
		t.Fatalf("expected error without target")
	}
}

func TestVersionCommand(t *testing.T) {
	out := mustExecute(t, "", "version")
	if !strings.Contains(out, "version: ") || !strings.Contains(out, "commit: ") {
		t.Fatalf("unexpected version output: %s", out)
	}
}

func TestSetupDefaultServices_OpensConfiguredStore(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	dsn := filepath.Join(tmp, "trader.db")

	var gotType, gotDSN string
	orig := openStore
	openStore = func(dbType, d string) (db.Store, error) {
		gotType, gotDSN = dbType, d
		return db.NewStoreFromDSN(dbType, d)
	}
	t.Cleanup(func() {
		openStore = orig
		if appStore != nil {
			_ = appStore.Close()
			appStore = nil
		}
	})

	mustExecute(t, "", "audit", "--database.dsn", dsn)
	if gotType != "sqlite" || gotDSN != dsn {
		t.Fatalf("unexpected store %s %s", gotType, gotDSN)
	}
	if _, err := os.Stat(filepath.Join(tmp, "soroban-trader", "soroban-trader.yaml")); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
}

func TestVerboseFlagEnablesStoreDebugLogging(t *testing.T) {
	setupTestStore(t)
	t.Cleanup(func() {
		db.SetDebug(false)
		logging.SetDebug(false)
	})

	mustExecute(t, "", "audit", "-v")
	if !db.DebugEnabled() {
		t.Fatalf("expected -v to enable store debug logging")
	}

	mustExecute(t, "", "audit")
	if db.DebugEnabled() {
		t.Fatalf("expected store debug logging to be off without -v")
	}
}

func TestParseHelpers(t *testing.T) {
	sg, err := parseSigner("GALICE:3:Alice Doe")
	if err != nil || sg.PublicKeyID != "GALICE" || sg.Weight != 3 || sg.DisplayName != "Alice Doe" {
		t.Fatalf("unexpected signer %+v (%v)", sg, err)
	}
	if _, err := parseSigner("GALICE"); err == nil {
		t.Fatalf("expected error for missing weight")
	}
	if _, err := parseSigner("GALICE:x"); err == nil {
		t.Fatalf("expected error for bad weight")
	}

	lim, err := parseLimits([]string{"maxDailyTrade=10", "maxDailyWithdraw=2.5"})
	if err != nil || lim["maxDailyTrade"].String() != "10" || lim["maxDailyWithdraw"].String() != "2.5" {
		t.Fatalf("unexpected limits %v (%v)", lim, err)
	}
	if _, err := parseLimits([]string{"=5"}); err == nil {
		t.Fatalf("expected error for missing asset")
	}
	if _, err := parseLimits([]string{"maxDailyTrade=abc"}); err == nil {
		t.Fatalf("expected error for bad amount")
	}
}
