// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package subaccount

import (
	"testing"
	"time"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreate_NameTooShort(t *testing.T) {
	_, err := Create("Bo", []model.Permission{model.PermView}, nil, t0)
	require.ErrorIs(t, err, model.ErrNameTooShort)

	_, err = Create("  Bo  ", nil, nil, t0)
	assert.ErrorIs(t, err, model.ErrNameTooShort)

	sa, err := Create("Bob", nil, nil, t0)
	require.NoError(t, err)
	assert.Equal(t, "Bob", sa.Name)
}

func TestCreate_UnknownPermission(t *testing.T) {
	_, err := Create("desk-1", []model.Permission{"trade", "admin"}, nil, t0)
	require.ErrorIs(t, err, model.ErrUnknownPermission)
	var me *model.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "admin", me.Details["permission"])
}

func TestCreate_InitializesUsage(t *testing.T) {
	sa, err := Create("desk-1", []model.Permission{"Trade", "view", "trade"}, map[string]decimal.Decimal{"maxDailyTrade": dec("1000")}, t0)
	require.NoError(t, err)
	assert.NotEmpty(t, sa.ID)
	assert.Equal(t, []model.Permission{model.PermTrade, model.PermView}, sa.Permissions)
	assert.Empty(t, sa.Usage)
	assert.Equal(t, t0, sa.WindowStartedAt)

	other, err := Create("desk-2", nil, nil, t0)
	require.NoError(t, err)
	assert.NotEqual(t, sa.ID, other.ID)
}

func TestCreate_NegativeLimit(t *testing.T) {
	_, err := Create("desk-1", nil, map[string]decimal.Decimal{"maxDailyTrade": dec("-1")}, t0)
	assert.ErrorIs(t, err, model.ErrInvalidLimit)
}

func TestSetPermissions_FullReplace(t *testing.T) {
	sa, err := Create("desk-1", []model.Permission{model.PermTrade, model.PermView},
		map[string]decimal.Decimal{"maxDailyTrade": dec("500")}, t0)
	require.NoError(t, err)

	_, err = SetPermissions(sa, []model.Permission{model.PermView}, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.Permission{model.PermView}, sa.Permissions)
	assert.Empty(t, sa.Limits)

	_, err = SetPermissions(sa, []model.Permission{"root"}, nil)
	assert.ErrorIs(t, err, model.ErrUnknownPermission)
	assert.Equal(t, []model.Permission{model.PermView}, sa.Permissions)
}

func TestAuthorize_PermissionDenied(t *testing.T) {
	sa, err := Create("viewer", []model.Permission{model.PermView}, nil, t0)
	require.NoError(t, err)

	ok, err := Authorize(sa, model.PermTrade, dec("1"))
	assert.False(t, ok)
	require.ErrorIs(t, err, model.ErrPermissionDenied)
	var me *model.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "trade", me.Details["permission"])
}

func TestAuthorize_LimitAccounting(t *testing.T) {
	sa, err := Create("trader", []model.Permission{model.PermTrade},
		map[string]decimal.Decimal{"maxDailyTrade": dec("100")}, t0)
	require.NoError(t, err)

	ok, err := Authorize(sa, model.PermTrade, dec("60"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, sa.Usage["maxDailyTrade"].Equal(dec("60")))

	ok, err = Authorize(sa, model.PermTrade, dec("40.0"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Authorize(sa, model.PermTrade, dec("0.01"))
	assert.False(t, ok)
	require.ErrorIs(t, err, model.ErrLimitExceeded)
	assert.True(t, sa.Usage["maxDailyTrade"].Equal(dec("100")))

	ResetWindow(sa, t0.Add(25*time.Hour))
	ok, err = Authorize(sa, model.PermTrade, dec("0.01"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthorize_NoLimitMeansUnbounded(t *testing.T) {
	sa, err := Create("trader", []model.Permission{model.PermTrade, model.PermWithdraw},
		map[string]decimal.Decimal{"maxDailyTrade": dec("10")}, t0)
	require.NoError(t, err)

	ok, err := Authorize(sa, model.PermWithdraw, dec("1000000"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, sa.Usage["maxDailyWithdraw"].Equal(dec("1000000")))
}

func TestWindowElapsed(t *testing.T) {
	sa, err := Create("trader", nil, nil, t0)
	require.NoError(t, err)
	assert.False(t, WindowElapsed(sa, t0.Add(23*time.Hour)))
	assert.True(t, WindowElapsed(sa, t0.Add(24*time.Hour)))
}

func TestList_SortedByName(t *testing.T) {
	a, _ := Create("zeta", nil, nil, t0)
	b, _ := Create("alpha", nil, nil, t0)
	out := List(map[string]*model.SubAccount{a.ID: a, b.ID: b})
	require.Len(t, out, 2)
	assert.Equal(t, "alpha", out[0].Name)
}

func TestParsePermissions(t *testing.T) {
	perms, err := ParsePermissions([]string{"view", "withdraw"})
	require.NoError(t, err)
	assert.Equal(t, []model.Permission{model.PermView, model.PermWithdraw}, perms)

	_, err = ParsePermissions([]string{"fly"})
	assert.ErrorIs(t, err, model.ErrUnknownPermission)
}
