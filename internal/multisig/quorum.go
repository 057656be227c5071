// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package multisig

import "github.com/kaankacar/soroban-trader-skill-sub000/internal/model"

// Quorum is the weight standing of a proposal against its registry.
type Quorum struct {
	CurrentWeight   int  `json:"currentWeight"`
	RemainingWeight int  `json:"remainingWeight"`
	Threshold       int  `json:"threshold"`
	Met             bool `json:"quorumMet"`
}

// Evaluate recomputes the proposal's weight from its signature set. Keys
// that are no longer registered contribute nothing.
func Evaluate(p *model.Proposal, reg *model.SignerRegistry) Quorum {
	q := Quorum{}
	if reg == nil {
		return q
	}
	q.Threshold = reg.Threshold
	for _, s := range reg.Signers {
		if _, ok := p.Signatures[s.PublicKeyID]; ok {
			q.CurrentWeight += s.Weight
		}
	}
	q.RemainingWeight = reg.Threshold - q.CurrentWeight
	if q.RemainingWeight < 0 {
		q.RemainingWeight = 0
	}
	q.Met = q.CurrentWeight >= reg.Threshold
	return q
}
