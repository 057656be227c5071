// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package subaccount implements the delegated sub-account registry and the
// permission gate that bounds what a sub-account may do.
package subaccount

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// MinNameLength is the shortest accepted sub-account name, in characters.
const MinNameLength = 3

// Window is the length of the rolling usage window.
const Window = 24 * time.Hour

// Create validates and builds a new sub-account with zeroed usage.
func Create(name string, permissions []model.Permission, limits map[string]decimal.Decimal, now time.Time) (*model.SubAccount, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < MinNameLength {
		return nil, model.NewError(model.CodeNameTooShort, "name must be at least %d characters", MinNameLength).
			With("name", name).With("minLength", MinNameLength)
	}
	perms, err := normalizePermissions(permissions)
	if err != nil {
		return nil, err
	}
	lims, err := normalizeLimits(limits)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	return &model.SubAccount{
		ID:              uuid.NewString(),
		Name:            name,
		Permissions:     perms,
		Limits:          lims,
		Usage:           make(map[string]decimal.Decimal),
		WindowStartedAt: now,
		CreatedAt:       now,
	}, nil
}

// SetPermissions replaces both the permission set and the limits. Nothing
// from the previous state is merged in. Usage counters are kept.
func SetPermissions(sa *model.SubAccount, permissions []model.Permission, limits map[string]decimal.Decimal) (*model.SubAccount, error) {
	perms, err := normalizePermissions(permissions)
	if err != nil {
		return nil, err
	}
	lims, err := normalizeLimits(limits)
	if err != nil {
		return nil, err
	}
	sa.Permissions = perms
	sa.Limits = lims
	return sa, nil
}

// Authorize checks an action against the sub-account's permissions and the
// daily limit bound to that action. On success the usage counter for the
// limit is increased by amount.
func Authorize(sa *model.SubAccount, action model.Permission, amount decimal.Decimal) (bool, error) {
	if !sa.Has(action) {
		return false, model.NewError(model.CodePermissionDenied, "sub-account %q lacks the %q permission", sa.Name, action).
			With("subAccountId", sa.ID).With("permission", string(action))
	}
	if amount.IsNegative() {
		return false, model.NewError(model.CodeInvalidLimit, "amount must not be negative").With("amount", amount.String())
	}
	name := action.LimitName()
	if name == "" {
		return true, nil
	}
	used := sa.Usage[name]
	if limit, ok := sa.Limits[name]; ok {
		if used.Add(amount).GreaterThan(limit) {
			return false, model.NewError(model.CodeLimitExceeded, "%s would be exceeded", name).
				With("limit", name).
				With("max", limit.String()).
				With("used", used.String()).
				With("requested", amount.String()).
				With("available", decimal.Max(limit.Sub(used), decimal.Zero).String())
		}
	}
	if sa.Usage == nil {
		sa.Usage = make(map[string]decimal.Decimal)
	}
	sa.Usage[name] = used.Add(amount)
	return true, nil
}

// ResetWindow zeroes every usage counter and restarts the window at now.
func ResetWindow(sa *model.SubAccount, now time.Time) {
	sa.Usage = make(map[string]decimal.Decimal)
	sa.WindowStartedAt = now.UTC()
}

// WindowElapsed reports whether the rolling usage window has run out.
func WindowElapsed(sa *model.SubAccount, now time.Time) bool {
	return !now.Before(sa.WindowStartedAt.Add(Window))
}

// List returns sub-accounts ordered by name, then id.
func List(accounts map[string]*model.SubAccount) []*model.SubAccount {
	out := make([]*model.SubAccount, 0, len(accounts))
	for _, sa := range accounts {
		out = append(out, sa)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ParsePermissions converts raw strings into permissions, rejecting any
// value outside the capability enum.
func ParsePermissions(raw []string) ([]model.Permission, error) {
	out := make([]model.Permission, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.Permission(r))
	}
	return normalizePermissions(out)
}

func normalizePermissions(in []model.Permission) ([]model.Permission, error) {
	seen := make(map[model.Permission]bool, len(in))
	out := make([]model.Permission, 0, len(in))
	for _, p := range in {
		p = model.Permission(strings.ToLower(strings.TrimSpace(string(p))))
		if !p.IsKnown() {
			return nil, model.NewError(model.CodeUnknownPermission, "unknown permission %q", p).With("permission", string(p))
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func normalizeLimits(in map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(in))
	for name, v := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, model.NewError(model.CodeInvalidLimit, "limit name is empty")
		}
		if v.IsNegative() {
			return nil, model.NewError(model.CodeInvalidLimit, "limit %q must not be negative", name).
				With("limit", name).With("value", v.String())
		}
		out[name] = v
	}
	return out, nil
}
