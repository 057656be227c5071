// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/lock"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/multisig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kaankacar/soroban-trader-skill-sub000/internal/core"

// Options wires the collaborators of a Service. Store is required; every
// other field has a usable default.
type Options struct {
	Store     SnapshotStore
	Identity  IdentityResolver
	Submitter Submitter
	Locker    Locker
	Clock     Clock
	// ProposalTTL is the lifetime given to new proposals. Zero means
	// proposals never expire.
	ProposalTTL time.Duration
	Tracer      trace.Tracer
	// Audit, when set, receives one entry per governance change attempt.
	Audit AuditWriter
}

// Service is the governance façade. It owns no state of its own: every
// operation loads the wallet snapshot, works on a copy and saves the copy
// before reporting success.
type Service struct {
	store     SnapshotStore
	identity  IdentityResolver
	submitter Submitter
	locker    Locker
	clock     Clock
	ttl       time.Duration
	tracer    trace.Tracer
	audit     AuditWriter
}

// NewService validates opts and fills in defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("core: snapshot store is required")
	}
	s := &Service{
		store:     opts.Store,
		identity:  opts.Identity,
		submitter: opts.Submitter,
		locker:    opts.Locker,
		clock:     opts.Clock,
		ttl:       opts.ProposalTTL,
		tracer:    opts.Tracer,
		audit:     opts.Audit,
	}
	if s.locker == nil {
		s.locker = lock.NewKeyedMutex()
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.ttl < 0 {
		s.ttl = 0
	}
	return s, nil
}

// errNoChange lets a mutation finish without saving.
var errNoChange = errors.New("no change")

// mutate runs fn against a copy of the wallet snapshot while holding the
// wallet lock, then saves the copy. When fn or the save fails the copy is
// dropped and the stored snapshot stays as it was.
func (s *Service) mutate(ctx context.Context, walletID string, fn func(snap *model.Snapshot, now time.Time) error) (*model.Snapshot, error) {
	var out *model.Snapshot
	err := s.locker.WithLock(ctx, walletID, func() error {
		cur, err := s.load(ctx, walletID)
		if err != nil {
			return err
		}
		next := cur.Clone()
		now := s.clock.Now().UTC()
		if err := fn(next, now); err != nil {
			if errors.Is(err, errNoChange) {
				out = cur
				return nil
			}
			return err
		}
		next.UpdatedAt = now
		if err := s.store.SaveSnapshot(ctx, walletID, next); err != nil {
			logging.Errorf("saving wallet %s failed: %v", walletID, err)
			return asStorageError(err, "saving wallet snapshot failed")
		}
		out = next
		return nil
	})
	if err != nil {
		var me *model.Error
		if !errors.As(err, &me) {
			logging.Errorf("wallet %s lock failed: %v", walletID, err)
			return nil, model.WrapError(model.CodeStorageUnavailable, err, "wallet lock unavailable")
		}
		return nil, err
	}
	return out, nil
}

// load reads a snapshot without locking.
func (s *Service) load(ctx context.Context, walletID string) (*model.Snapshot, error) {
	snap, err := s.store.LoadSnapshot(ctx, walletID)
	if err != nil {
		logging.Errorf("loading wallet %s failed: %v", walletID, err)
		return nil, asStorageError(err, "loading wallet snapshot failed")
	}
	if snap == nil {
		snap = model.NewSnapshot(walletID)
	}
	if snap.Proposals == nil {
		snap.Proposals = make(map[string]*model.Proposal)
	}
	if snap.SubAccounts == nil {
		snap.SubAccounts = make(map[string]*model.SubAccount)
	}
	if snap.Policy.Mode == "" {
		snap.Policy.Mode = model.ModeNone
	}
	snap.WalletID = walletID
	return snap, nil
}

func asStorageError(err error, msg string) error {
	if errors.Is(err, model.ErrStorageUnavailable) {
		return err
	}
	return model.WrapError(model.CodeStorageUnavailable, err, "%s", msg)
}

// begin opens a span for op and validates the caller's wallet.
func (s *Service) begin(ctx context.Context, op string, caller model.Identity) (context.Context, trace.Span, error) {
	ctx, span := s.tracer.Start(ctx, "core."+op, trace.WithAttributes(
		attribute.String("wallet.id", caller.WalletID),
		attribute.String("caller.key", caller.PublicKeyID),
	))
	if strings.TrimSpace(caller.WalletID) == "" || strings.TrimSpace(caller.PublicKeyID) == "" {
		return ctx, span, model.NewError(model.CodeUnauthenticated, "caller identity is incomplete")
	}
	return ctx, span, nil
}

// auditedOps are the operations that change a wallet.
var auditedOps = map[string]bool{
	"setupMultiSig":            true,
	"proposeTransaction":       true,
	"signTransaction":          true,
	"executeMultiSigTx":        true,
	"rejectProposal":           true,
	"createSubAccount":         true,
	"setSubAccountPermissions": true,
	"deleteSubAccount":         true,
	"resetSubAccountWindow":    true,
	"setAssetPolicy":           true,
}

// end records err on the span, logs the outcome and writes the audit entry.
func (s *Service) end(ctx context.Context, span trace.Span, op string, caller model.Identity, err error) {
	defer span.End()
	s.recordAudit(ctx, op, caller, err)
	if err == nil {
		return
	}
	var me *model.Error
	if errors.As(err, &me) {
		span.SetAttributes(attribute.String("error.code", string(me.Code)))
		if me.Kind() != model.KindInfrastructure {
			logging.Debugf("%s rejected for %s/%s: %v", op, caller.WalletID, caller.PublicKeyID, err)
			span.SetStatus(codes.Error, string(me.Code))
			return
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s *Service) recordAudit(ctx context.Context, op string, caller model.Identity, err error) {
	if s.audit == nil || !auditedOps[op] || caller.WalletID == "" {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(model.CodeStorageUnavailable)
		var me *model.Error
		if errors.As(err, &me) {
			outcome = string(me.Code)
		}
	}
	entry := model.AuditEntry{
		Timestamp: s.clock.Now().UTC(),
		WalletID:  caller.WalletID,
		Actor:     caller.PublicKeyID,
		Action:    op,
		Outcome:   outcome,
	}
	if aerr := s.audit.LogAction(context.WithoutCancel(ctx), entry); aerr != nil {
		logging.Warnf("audit entry for %s on wallet %s not written: %v", op, caller.WalletID, aerr)
	}
}

// requireGovernor allows governance changes only to registered signers once
// a registry exists. Before that any authenticated caller of the wallet
// may bootstrap it.
func requireGovernor(snap *model.Snapshot, caller model.Identity) error {
	if snap.Registry == nil {
		return nil
	}
	if !multisig.IsSigner(snap.Registry, caller.PublicKeyID) {
		return model.NewError(model.CodeNotASigner, "only registered signers may change governance settings").
			With("publicKeyId", caller.PublicKeyID)
	}
	return nil
}

func requireRegistry(snap *model.Snapshot) error {
	if snap.Registry == nil {
		return model.NewError(model.CodeMultiSigNotConfigured, "wallet %s has no signer registry", snap.WalletID).
			With("walletId", snap.WalletID)
	}
	return nil
}

func findProposal(snap *model.Snapshot, id string) (*model.Proposal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewError(model.CodeInvalidRequest, "proposalId is required").With("field", "proposalId")
	}
	p, ok := snap.Proposals[id]
	if !ok {
		return nil, model.NewError(model.CodeProposalNotFound, "proposal %s not found", id).With("proposalId", id)
	}
	return p, nil
}

func findSubAccount(snap *model.Snapshot, id string) (*model.SubAccount, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewError(model.CodeInvalidRequest, "subAccountId is required").With("field", "subAccountId")
	}
	sa, ok := snap.SubAccounts[id]
	if !ok {
		return nil, model.NewError(model.CodeSubAccountNotFound, "sub-account %s not found", id).With("subAccountId", id)
	}
	return sa, nil
}
