// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/charmbracelet/log"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/identity"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/lock"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/submit"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// SecretEnv holds the credential secret when --secret is not given.
const SecretEnv = "SOROBAN_TRADER_SECRET"

// passwordCost is replaced in tests to keep bcrypt fast.
var passwordCost = 0

// isTerminal and readPassword are replaced in tests.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
var readPassword = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }

// newLocker picks the wallet lock backend from the configuration. The
// returned cleanup closes the redis client when one was opened.
func newLocker(ctx context.Context) (core.Locker, func(), error) {
	switch strings.ToLower(strings.TrimSpace(appConfig.Lock.Backend)) {
	case "", "memory":
		return lock.NewKeyedMutex(), func() {}, nil
	case "redis":
		opts := lock.DefaultOptions()
		if appConfig.Lock.Expiry > 0 {
			opts.Expiry = appConfig.Lock.Expiry
		}
		l, client, err := lock.NewRedisLockFromConfig(ctx, lock.RedisConfig{
			Addr:     appConfig.Lock.Redis.Addr,
			Password: appConfig.Lock.Redis.Password,
			DB:       appConfig.Lock.Redis.DB,
		}, opts)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock backend %q (want memory or redis)", appConfig.Lock.Backend)
	}
}

// newSubmitter returns the dry-run submitter unless a gateway endpoint is
// configured and dry_run is off.
func newSubmitter() (core.Submitter, error) {
	sc := appConfig.Submission
	if sc.DryRun || strings.TrimSpace(sc.Endpoint) == "" {
		return submit.DryRun{}, nil
	}
	return submit.NewHTTPSubmitter(submit.Config{
		Endpoint: sc.Endpoint,
		Timeout:  sc.Timeout,
		Breaker:  sc.Breaker,
	})
}

// buildService wires a core.Service over the shared store.
func buildService(ctx context.Context) (*core.Service, func(), error) {
	locker, cleanup, err := newLocker(ctx)
	if err != nil {
		return nil, nil, err
	}
	sub, err := newSubmitter()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	svc, err := core.NewService(core.Options{
		Store:       appStore,
		Identity:    identity.NewResolver(appStore, passwordCost),
		Submitter:   sub,
		Locker:      locker,
		ProposalTTL: appConfig.Proposal.TTL,
		Audit:       appStore,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// readSecret takes the secret from --secret, the environment or an
// interactive prompt, in that order.
func readSecret(cmd *cobra.Command) (security.Secret, error) {
	if s, _ := cmd.Flags().GetString("secret"); s != "" {
		return security.FromString(s), nil
	}
	if s := os.Getenv(SecretEnv); s != "" {
		return security.FromString(s), nil
	}
	if !isTerminal() {
		return nil, fmt.Errorf("no secret given: use --secret or set %s", SecretEnv)
	}
	fmt.Fprint(cmd.ErrOrStderr(), i18n.T("cli.secret_prompt"))
	b, err := readPassword()
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	return security.FromBytes(b), nil
}

// opError carries a failed operation's body so the exit path can report it.
type opError struct {
	body *core.ErrorBody
}

func (e *opError) Error() string { return fmt.Sprintf("%s: %s", e.body.Code, e.body.Error) }

// callOp authenticates and runs one operation through the request surface.
// A failed operation is printed and returned as *opError.
func callOp(cmd *cobra.Command, op string, params any) (core.Response, error) {
	var raw json.RawMessage
	switch p := params.(type) {
	case nil:
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return core.Response{}, err
		}
		raw = b
	}
	return callRaw(cmd, op, raw)
}

func callRaw(cmd *cobra.Command, op string, raw json.RawMessage) (core.Response, error) {
	secret, err := readSecret(cmd)
	if err != nil {
		return core.Response{}, err
	}
	defer secret.Zero()

	ctx := cmd.Context()
	svc, cleanup, err := buildService(ctx)
	if err != nil {
		return core.Response{}, err
	}
	defer cleanup()

	resp := svc.Handle(ctx, core.Request{
		WalletID:  appConfig.Wallet,
		Secret:    secret,
		Operation: op,
		Params:    raw,
	})
	if !resp.OK() {
		printErrorBody(cmd.ErrOrStderr(), resp.Err)
		return resp, &opError{body: resp.Err}
	}
	if outputFormat == "json" {
		return resp, printJSON(cmd.OutOrStdout(), resp)
	}
	return resp, nil
}

func printErrorBody(w io.Writer, body *core.ErrorBody) {
	if outputFormat == "json" {
		_ = printJSON(w, body)
		return
	}
	fmt.Fprintf(w, "Error [%s]: %s\n", body.Code, body.Error)
	if body.Recommendation != "" {
		fmt.Fprintf(w, "  %s\n", body.Recommendation)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// textOutput reports whether human-readable output should be printed.
func textOutput() bool { return outputFormat != "json" }

// logFailure logs non-operation errors; operation errors were printed by callOp.
func logFailure(err error) {
	var oe *opError
	if err != nil && !errors.As(err, &oe) {
		log.Error(err)
	}
}
