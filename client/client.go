// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/core"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

// Error is a failed operation as reported by the service.
type Error struct {
	// Status is the HTTP status, or zero for in-process calls.
	Status int
	Body   core.ErrorBody
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Body.Code, e.Body.Error)
}

// CodeOf returns the error code carried by err, or "" when err did not come
// from the service.
func CodeOf(err error) model.ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Body.Code
	}
	return ""
}

// transport carries one encoded operation and returns the encoded payload.
type transport interface {
	call(ctx context.Context, op string, params []byte) ([]byte, error)
}

// Client exposes every governance operation with typed arguments.
type Client struct {
	t transport
}

// Call runs op with params and decodes the payload into out. Both may be nil.
func (c *Client) Call(ctx context.Context, op string, params, out any) error {
	var raw []byte
	if params != nil {
		var err error
		if raw, err = json.Marshal(params); err != nil {
			return fmt.Errorf("encode %s params: %w", op, err)
		}
	}
	payload, err := c.t.call(ctx, op, raw)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", op, err)
	}
	return nil
}

func do[R any](ctx context.Context, c *Client, op string, params any) (*R, error) {
	out := new(R)
	if err := c.Call(ctx, op, params, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetupMultiSig(ctx context.Context, req core.SetupRequest) (*core.SetupResult, error) {
	return do[core.SetupResult](ctx, c, "setupMultiSig", req)
}

func (c *Client) ProposeTransaction(ctx context.Context, req core.ProposeRequest) (*core.ProposeResult, error) {
	return do[core.ProposeResult](ctx, c, "proposeTransaction", req)
}

func (c *Client) SignTransaction(ctx context.Context, proposalID string) (*core.SignResult, error) {
	return do[core.SignResult](ctx, c, "signTransaction", core.ProposalRef{ProposalID: proposalID})
}

func (c *Client) ExecuteMultiSigTx(ctx context.Context, proposalID string) (*core.ExecuteResult, error) {
	return do[core.ExecuteResult](ctx, c, "executeMultiSigTx", core.ProposalRef{ProposalID: proposalID})
}

func (c *Client) RejectProposal(ctx context.Context, proposalID string) (*core.ProposalStatusResult, error) {
	return do[core.ProposalStatusResult](ctx, c, "rejectProposal", core.ProposalRef{ProposalID: proposalID})
}

func (c *Client) GetMultiSigProposals(ctx context.Context, req core.ListProposalsRequest) (*core.ListProposalsResult, error) {
	return do[core.ListProposalsResult](ctx, c, "getMultiSigProposals", req)
}

func (c *Client) CreateSubAccount(ctx context.Context, req core.SubAccountRequest) (*model.SubAccount, error) {
	return do[model.SubAccount](ctx, c, "createSubAccount", req)
}

func (c *Client) ListSubAccounts(ctx context.Context) (*core.ListSubAccountsResult, error) {
	return do[core.ListSubAccountsResult](ctx, c, "listSubAccounts", nil)
}

func (c *Client) SetSubAccountPermissions(ctx context.Context, req core.SubAccountRequest) (*model.SubAccount, error) {
	return do[model.SubAccount](ctx, c, "setSubAccountPermissions", req)
}

func (c *Client) DeleteSubAccount(ctx context.Context, subAccountID string) (*core.DeleteSubAccountResult, error) {
	return do[core.DeleteSubAccountResult](ctx, c, "deleteSubAccount", core.SubAccountRef{SubAccountID: subAccountID})
}

func (c *Client) ResetSubAccountWindow(ctx context.Context, subAccountID string) (*model.SubAccount, error) {
	return do[model.SubAccount](ctx, c, "resetSubAccountWindow", core.SubAccountRef{SubAccountID: subAccountID})
}

func (c *Client) SetAssetPolicy(ctx context.Context, req core.PolicyRequest) (*model.CompliancePolicy, error) {
	return do[model.CompliancePolicy](ctx, c, "setAssetPolicy", req)
}

func (c *Client) GetAssetPolicy(ctx context.Context) (*model.CompliancePolicy, error) {
	return do[model.CompliancePolicy](ctx, c, "getAssetPolicy", nil)
}

func (c *Client) CheckAssetCompliance(ctx context.Context, asset string) (*core.ComplianceResult, error) {
	return do[core.ComplianceResult](ctx, c, "checkAssetCompliance", core.ComplianceRequest{Asset: asset})
}

func (c *Client) GetInstitutionalDashboard(ctx context.Context) (*core.DashboardData, error) {
	return do[core.DashboardData](ctx, c, "getInstitutionalDashboard", nil)
}
