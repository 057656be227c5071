// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package compliance is the asset policy gate consulted before any
// proposal executes.
package compliance

import (
	"sort"
	"strings"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// ParseMode returns the policy mode named by s.
func ParseMode(s string) (model.PolicyMode, error) {
	m := model.PolicyMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case model.ModeWhitelist, model.ModeBlacklist, model.ModeNone:
		return m, nil
	}
	return "", model.NewError(model.CodeUnknownMode, "unknown policy mode %q", s).With("mode", s)
}

// NewPolicy builds a replacement policy. The asset set is normalized,
// de-duplicated and sorted; the previous policy is not consulted.
func NewPolicy(mode string, assets []string, now time.Time) (model.CompliancePolicy, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return model.CompliancePolicy{}, err
	}
	seen := make(map[string]bool, len(assets))
	set := make([]string, 0, len(assets))
	for _, a := range assets {
		n := model.NormalizeAsset(a)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		set = append(set, n)
	}
	sort.Strings(set)
	return model.CompliancePolicy{Mode: m, Assets: set, UpdatedAt: now.UTC()}, nil
}

// Check reports whether asset is compliant under policy.
func Check(policy model.CompliancePolicy, asset string) bool {
	a := model.NormalizeAsset(asset)
	switch policy.Mode {
	case model.ModeWhitelist:
		return contains(policy.Assets, a)
	case model.ModeBlacklist:
		return !contains(policy.Assets, a)
	default:
		return true
	}
}

// FirstViolation returns the first asset the policy rejects.
func FirstViolation(policy model.CompliancePolicy, assets []string) (string, bool) {
	for _, a := range assets {
		if !Check(policy, a) {
			return a, true
		}
	}
	return "", false
}

func contains(set []string, a string) bool {
	for _, s := range set {
		if s == a {
			return true
		}
	}
	return false
}

// Gate adapts a policy to the checker interface used at execution time.
type Gate struct {
	Policy model.CompliancePolicy
}

// Check reports whether asset passes the wrapped policy.
func (g Gate) Check(asset string) bool { return Check(g.Policy, asset) }
