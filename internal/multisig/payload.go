// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package multisig

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/model"
)

var (
	payloadValidate     *validator.Validate
	payloadValidateOnce sync.Once
)

func getPayloadValidator() *validator.Validate {
	payloadValidateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names so error details match what callers sent.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(validatePayloadShape, model.TxPayload{})
		payloadValidate = v
	})
	return payloadValidate
}

// validatePayloadShape enforces the per-type field requirements that plain
// struct tags cannot express.
func validatePayloadShape(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(model.TxPayload)
	if !ok {
		return
	}
	requireField := func(value, field, name string) {
		if strings.TrimSpace(value) == "" {
			sl.ReportError(value, field, name, "required_for_type", string(p.Type))
		}
	}
	requireAmount := func() {
		if !p.Amount.IsPositive() {
			sl.ReportError(p.Amount, "amount", "Amount", "positive_decimal", "")
		}
	}

	switch p.Type {
	case model.TxPayment:
		requireField(p.Destination, "destination", "Destination")
		requireField(p.Asset, "asset", "Asset")
		requireAmount()
	case model.TxSwap:
		requireField(p.SendAsset, "sendAsset", "SendAsset")
		requireField(p.ReceiveAsset, "receiveAsset", "ReceiveAsset")
		requireAmount()
		if p.SendAsset != "" && model.NormalizeAsset(p.SendAsset) == model.NormalizeAsset(p.ReceiveAsset) {
			sl.ReportError(p.ReceiveAsset, "receiveAsset", "ReceiveAsset", "nefield", "sendAsset")
		}
	case model.TxTrustline:
		requireField(p.Asset, "asset", "Asset")
		if p.Amount.IsNegative() {
			sl.ReportError(p.Amount, "amount", "Amount", "nonnegative_amount", "")
		}
	case model.TxContractCall:
		requireField(p.ContractID, "contractId", "ContractID")
		requireField(p.Function, "function", "Function")
	}
}

// NormalizePayload trims free-text fields and lower-cases the type so that
// validation and asset extraction see canonical values.
func NormalizePayload(p model.TxPayload) model.TxPayload {
	p.Type = model.TxType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	p.Destination = strings.TrimSpace(p.Destination)
	p.Asset = strings.TrimSpace(p.Asset)
	p.SendAsset = strings.TrimSpace(p.SendAsset)
	p.ReceiveAsset = strings.TrimSpace(p.ReceiveAsset)
	p.ContractID = strings.TrimSpace(p.ContractID)
	p.Function = strings.TrimSpace(p.Function)
	p.Memo = strings.TrimSpace(p.Memo)
	return p
}

// ValidatePayload checks that the payload declares a recognized action
// type and carries the fields that type requires. The returned error is a
// MalformedTransaction naming the first offending field.
func ValidatePayload(p model.TxPayload) error {
	err := getPayloadValidator().Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		out := model.NewError(model.CodeMalformedTransaction, "field %q failed %q", fe.Field(), fe.Tag()).
			With("field", fe.Field()).With("rule", fe.Tag())
		if fe.Param() != "" {
			out = out.With("param", fe.Param())
		}
		return out
	}
	return model.WrapError(model.CodeMalformedTransaction, err, "transaction payload rejected")
}
