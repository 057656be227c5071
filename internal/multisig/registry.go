// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package multisig

import (
	"math"
	"strings"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// MaxTotalWeight bounds the summed signer weight of a registry so that
// quorum sums and the security level bands never overflow int.
const MaxTotalWeight = math.MaxInt32 / 5

// Setup validates a signer set and threshold and builds a new registry.
// Changing membership always goes through Setup; there is no partial
// add/remove.
func Setup(signers []model.Signer, threshold int, now time.Time) (*model.SignerRegistry, model.SecurityLevel, error) {
	if len(signers) == 0 {
		return nil, "", model.NewError(model.CodeEmptySignerSet, "at least one signer is required")
	}

	seen := make(map[string]bool, len(signers))
	out := make([]model.Signer, 0, len(signers))
	total := 0
	for i, s := range signers {
		id := strings.TrimSpace(s.PublicKeyID)
		if id == "" {
			return nil, "", model.NewError(model.CodeInvalidSigner, "signer %d has no public key id", i).With("index", i)
		}
		if s.Weight < 1 {
			return nil, "", model.NewError(model.CodeInvalidSigner, "signer weight must be positive").
				With("publicKeyId", id).With("weight", s.Weight)
		}
		if s.Weight > MaxTotalWeight-total {
			return nil, "", model.NewError(model.CodeInvalidSigner, "total signer weight must not exceed %d", MaxTotalWeight).
				With("publicKeyId", id).With("weight", s.Weight).With("maxTotalWeight", MaxTotalWeight)
		}
		if seen[id] {
			return nil, "", model.NewError(model.CodeDuplicateSigner, "signer listed more than once").With("publicKeyId", id)
		}
		seen[id] = true
		total += s.Weight
		out = append(out, model.Signer{PublicKeyID: id, Weight: s.Weight, DisplayName: strings.TrimSpace(s.DisplayName)})
	}

	if threshold < 1 || threshold > total {
		return nil, "", model.NewError(model.CodeInvalidThreshold, "threshold must be between 1 and the total signer weight").
			With("threshold", threshold).With("totalWeight", total)
	}

	reg := &model.SignerRegistry{Signers: out, Threshold: threshold, CreatedAt: now.UTC()}
	return reg, SecurityLevel(reg), nil
}

// IsSigner reports whether publicKeyID belongs to the registry.
func IsSigner(reg *model.SignerRegistry, publicKeyID string) bool {
	_, ok := Weight(reg, publicKeyID)
	return ok
}

// Weight returns the weight of a signer and whether it is registered.
func Weight(reg *model.SignerRegistry, publicKeyID string) (int, bool) {
	if reg == nil {
		return 0, false
	}
	for _, s := range reg.Signers {
		if s.PublicKeyID == publicKeyID {
			return s.Weight, true
		}
	}
	return 0, false
}

// TotalWeight sums the weights of every registered signer.
func TotalWeight(reg *model.SignerRegistry) int {
	if reg == nil {
		return 0
	}
	total := 0
	for _, s := range reg.Signers {
		total += s.Weight
	}
	return total
}

// SecurityLevel classifies threshold/totalWeight: HIGH at 80% or more,
// STANDARD at 50% or more, LOW below. Integer arithmetic keeps the band
// edges exact.
func SecurityLevel(reg *model.SignerRegistry) model.SecurityLevel {
	total := TotalWeight(reg)
	if reg == nil || total == 0 {
		return model.SecurityLow
	}
	switch {
	case 5*reg.Threshold >= 4*total:
		return model.SecurityHigh
	case 2*reg.Threshold >= total:
		return model.SecurityStandard
	default:
		return model.SecurityLow
	}
}
