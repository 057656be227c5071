// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/multisig"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/subaccount"
	"go.opentelemetry.io/otel/attribute"
)

// SweepReport totals what one sweep changed.
type SweepReport struct {
	Wallets       int `json:"wallets"`
	Expired       int `json:"expiredProposals"`
	WindowsReset  int `json:"windowsReset"`
	FailedWallets int `json:"failedWallets"`
}

// SweepWallet expires overdue proposals and resets elapsed usage windows of
// one wallet. Nothing is saved when nothing changed.
func (s *Service) SweepWallet(ctx context.Context, walletID string) (SweepReport, error) {
	var rep SweepReport
	_, err := s.mutate(ctx, walletID, func(snap *model.Snapshot, now time.Time) error {
		for _, p := range snap.Proposals {
			if multisig.Expire(p, now) {
				rep.Expired++
			}
		}
		for _, sa := range snap.SubAccounts {
			if subaccount.WindowElapsed(sa, now) {
				subaccount.ResetWindow(sa, now)
				rep.WindowsReset++
			}
		}
		if rep.Expired == 0 && rep.WindowsReset == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return SweepReport{}, err
	}
	rep.Wallets = 1
	return rep, nil
}

// Sweep runs SweepWallet over every stored wallet. A failing wallet is
// logged and counted; the others are still swept.
func (s *Service) Sweep(ctx context.Context) (SweepReport, error) {
	ctx, span := s.tracer.Start(ctx, "core.sweep")
	defer span.End()

	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		span.RecordError(err)
		return SweepReport{}, asStorageError(err, "listing wallets failed")
	}
	var total SweepReport
	var errs []error
	for _, w := range wallets {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		rep, err := s.SweepWallet(ctx, w)
		if err != nil {
			logging.Errorf("sweep of wallet %s failed: %v", w, err)
			total.FailedWallets++
			errs = append(errs, err)
			continue
		}
		total.Wallets++
		total.Expired += rep.Expired
		total.WindowsReset += rep.WindowsReset
	}
	span.SetAttributes(
		attribute.Int("sweep.wallets", total.Wallets),
		attribute.Int("sweep.expired", total.Expired),
		attribute.Int("sweep.windows_reset", total.WindowsReset),
	)
	if total.Expired > 0 || total.WindowsReset > 0 {
		logging.Infof("sweep: %d proposals expired, %d usage windows reset across %d wallets", total.Expired, total.WindowsReset, total.Wallets)
	}
	return total, errors.Join(errs...)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				logging.Warnf("sweep finished with errors: %v", err)
			}
		}
	}
}
