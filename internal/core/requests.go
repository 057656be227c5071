// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/security"
)

// Request is one call on the JSON request surface.
type Request struct {
	// WalletID, when set, must match the wallet the secret resolves to.
	WalletID  string
	Secret    security.Secret
	Operation string
	Params    json.RawMessage
}

// ErrorBody is the structured failure returned by every operation.
type ErrorBody struct {
	Error          string          `json:"error"`
	Code           model.ErrorCode `json:"code"`
	Kind           model.ErrorKind `json:"kind"`
	Recommendation string          `json:"recommendation,omitempty"`
	Details        map[string]any  `json:"details,omitempty"`
}

// Response holds either a success payload or an error body. It marshals to
// whichever one is set.
type Response struct {
	Payload any
	Err     *ErrorBody
}

// MarshalJSON emits the payload or the error body.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	if r.Payload == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Payload)
}

// OK reports whether the response carries a success payload.
func (r Response) OK() bool { return r.Err == nil }

type handlerFunc func(ctx context.Context, s *Service, caller model.Identity, params json.RawMessage) (any, error)

// bind adapts a typed operation to the request surface.
func bind[T any, R any](fn func(*Service, context.Context, model.Identity, T) (R, error)) handlerFunc {
	return func(ctx context.Context, s *Service, caller model.Identity, params json.RawMessage) (any, error) {
		var req T
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return fn(s, ctx, caller, req)
	}
}

// bindNoParams adapts an operation that takes no arguments.
func bindNoParams[R any](fn func(*Service, context.Context, model.Identity) (R, error)) handlerFunc {
	return func(ctx context.Context, s *Service, caller model.Identity, _ json.RawMessage) (any, error) {
		return fn(s, ctx, caller)
	}
}

var operations = map[string]handlerFunc{
	"setupMultiSig":             bind((*Service).SetupMultiSig),
	"proposeTransaction":        bind((*Service).ProposeTransaction),
	"signTransaction":           bind((*Service).SignTransaction),
	"executeMultiSigTx":         bind((*Service).ExecuteMultiSigTx),
	"rejectProposal":            bind((*Service).RejectProposal),
	"getMultiSigProposals":      bind((*Service).GetMultiSigProposals),
	"createSubAccount":          bind((*Service).CreateSubAccount),
	"listSubAccounts":           bindNoParams((*Service).ListSubAccounts),
	"setSubAccountPermissions":  bind((*Service).SetSubAccountPermissions),
	"deleteSubAccount":          bind((*Service).DeleteSubAccount),
	"resetSubAccountWindow":     bind((*Service).ResetSubAccountWindow),
	"setAssetPolicy":            bind((*Service).SetAssetPolicy),
	"getAssetPolicy":            bindNoParams((*Service).GetAssetPolicy),
	"checkAssetCompliance":      bind((*Service).CheckAssetCompliance),
	"getInstitutionalDashboard": bindNoParams((*Service).GetInstitutionalDashboard),
}

// Operations lists the names accepted by Handle.
func Operations() []string {
	out := make([]string, 0, len(operations))
	for name := range operations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func decodeParams(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.WrapError(model.CodeInvalidRequest, err, "request parameters are not valid JSON for this operation").
			With("reason", err.Error())
	}
	if dec.More() {
		return model.NewError(model.CodeInvalidRequest, "request parameters carry trailing data")
	}
	return nil
}

// Handle authenticates the request and dispatches it.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	if s.identity == nil {
		return ErrorResponse(model.NewError(model.CodeUnauthenticated, "no identity resolver configured"))
	}
	if req.Secret.Empty() {
		return ErrorResponse(model.NewError(model.CodeUnauthenticated, "authentication secret is required"))
	}
	caller, err := s.identity.Resolve(ctx, req.Secret)
	if err != nil {
		return ErrorResponse(err)
	}
	if req.WalletID != "" && req.WalletID != caller.WalletID {
		return ErrorResponse(model.NewError(model.CodeUnauthenticated, "credentials are not valid for wallet %s", req.WalletID))
	}
	return s.HandleAs(ctx, caller, req.Operation, req.Params)
}

// HandleAs dispatches an operation for an already resolved caller.
func (s *Service) HandleAs(ctx context.Context, caller model.Identity, operation string, params json.RawMessage) Response {
	h, ok := operations[strings.TrimSpace(operation)]
	if !ok {
		return ErrorResponse(model.NewError(model.CodeUnknownOperation, "unknown operation %q", operation).With("operation", operation))
	}
	out, err := h(ctx, s, caller, params)
	if err != nil {
		return ErrorResponse(err)
	}
	return Response{Payload: out}
}

// ErrorResponse converts err into a response. Errors that are not domain
// errors are reported as storage failures since every collaborator error
// reaching this point comes from the persistence path.
func ErrorResponse(err error) Response {
	var me *model.Error
	if !errors.As(err, &me) {
		me = model.WrapError(model.CodeStorageUnavailable, err, "operation failed")
	}
	body := errorBody(me)
	return Response{Err: &body}
}

func errorBody(me *model.Error) ErrorBody {
	msg := me.Message
	if msg == "" {
		msg = string(me.Code)
	}
	body := ErrorBody{
		Error:   msg,
		Code:    me.Code,
		Kind:    me.Kind(),
		Details: me.Details,
	}
	id := "recommendation." + string(me.Code)
	if rec := i18n.T(id); rec != id {
		body.Recommendation = rec
	}
	return body
}
