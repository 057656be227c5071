// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind groups error codes by how a caller is expected to react.
type ErrorKind string

const (
	// KindValidation marks malformed input. Nothing was mutated.
	KindValidation ErrorKind = "validation"
	// KindAuthorization marks a well-formed request the caller may not perform yet.
	KindAuthorization ErrorKind = "authorization"
	// KindNotFound marks a reference to an aggregate that does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindState marks a request made against a stale view of an aggregate.
	KindState ErrorKind = "state"
	// KindInfrastructure marks a failure of a collaborator; the caller should retry.
	KindInfrastructure ErrorKind = "infrastructure"
)

// ErrorCode is the stable, machine-readable identifier of a domain failure.
type ErrorCode string

const (
	CodeInvalidThreshold       ErrorCode = "InvalidThreshold"
	CodeInvalidSigner          ErrorCode = "InvalidSigner"
	CodeDuplicateSigner        ErrorCode = "DuplicateSigner"
	CodeEmptySignerSet         ErrorCode = "EmptySignerSet"
	CodeNameTooShort           ErrorCode = "NameTooShort"
	CodeUnknownPermission      ErrorCode = "UnknownPermission"
	CodeInvalidLimit           ErrorCode = "InvalidLimit"
	CodeUnknownMode            ErrorCode = "UnknownMode"
	CodeMalformedTransaction   ErrorCode = "MalformedTransaction"
	CodeUnknownOperation       ErrorCode = "UnknownOperation"
	CodeInvalidRequest         ErrorCode = "InvalidRequest"
	CodeNotASigner             ErrorCode = "NotASigner"
	CodeAlreadySigned          ErrorCode = "AlreadySigned"
	CodePermissionDenied       ErrorCode = "PermissionDenied"
	CodeLimitExceeded          ErrorCode = "LimitExceeded"
	CodeInsufficientSignatures ErrorCode = "InsufficientSignatures"
	CodeComplianceViolation    ErrorCode = "ComplianceViolation"
	CodeUnauthenticated        ErrorCode = "Unauthenticated"
	CodeProposalNotFound       ErrorCode = "ProposalNotFound"
	CodeSubAccountNotFound     ErrorCode = "SubAccountNotFound"
	CodeMultiSigNotConfigured  ErrorCode = "MultiSigNotConfigured"
	CodeProposalNotPending     ErrorCode = "ProposalNotPending"
	CodeStorageUnavailable     ErrorCode = "StorageUnavailable"
	CodeSubmissionFailed       ErrorCode = "SubmissionFailed"
)

var codeKinds = map[ErrorCode]ErrorKind{
	CodeInvalidThreshold:       KindValidation,
	CodeInvalidSigner:          KindValidation,
	CodeDuplicateSigner:        KindValidation,
	CodeEmptySignerSet:         KindValidation,
	CodeNameTooShort:           KindValidation,
	CodeUnknownPermission:      KindValidation,
	CodeInvalidLimit:           KindValidation,
	CodeUnknownMode:            KindValidation,
	CodeMalformedTransaction:   KindValidation,
	CodeUnknownOperation:       KindValidation,
	CodeInvalidRequest:         KindValidation,
	CodeNotASigner:             KindAuthorization,
	CodeAlreadySigned:          KindAuthorization,
	CodePermissionDenied:       KindAuthorization,
	CodeLimitExceeded:          KindAuthorization,
	CodeInsufficientSignatures: KindAuthorization,
	CodeComplianceViolation:    KindAuthorization,
	CodeUnauthenticated:        KindAuthorization,
	CodeProposalNotFound:       KindNotFound,
	CodeSubAccountNotFound:     KindNotFound,
	CodeMultiSigNotConfigured:  KindNotFound,
	CodeProposalNotPending:     KindState,
	CodeStorageUnavailable:     KindInfrastructure,
	CodeSubmissionFailed:       KindInfrastructure,
}

// Kind returns the error kind registered for the code.
func (c ErrorCode) Kind() ErrorKind {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return KindInfrastructure
}

// Error is a domain failure. Two errors match under errors.Is when their
// codes are equal, so the package-level sentinels below can be used as
// targets regardless of message or details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	Err     error
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidThreshold       = &Error{Code: CodeInvalidThreshold}
	ErrInvalidSigner          = &Error{Code: CodeInvalidSigner}
	ErrDuplicateSigner        = &Error{Code: CodeDuplicateSigner}
	ErrEmptySignerSet         = &Error{Code: CodeEmptySignerSet}
	ErrNameTooShort           = &Error{Code: CodeNameTooShort}
	ErrUnknownPermission      = &Error{Code: CodeUnknownPermission}
	ErrInvalidLimit           = &Error{Code: CodeInvalidLimit}
	ErrUnknownMode            = &Error{Code: CodeUnknownMode}
	ErrMalformedTransaction   = &Error{Code: CodeMalformedTransaction}
	ErrUnknownOperation       = &Error{Code: CodeUnknownOperation}
	ErrInvalidRequest         = &Error{Code: CodeInvalidRequest}
	ErrNotASigner             = &Error{Code: CodeNotASigner}
	ErrAlreadySigned          = &Error{Code: CodeAlreadySigned}
	ErrPermissionDenied       = &Error{Code: CodePermissionDenied}
	ErrLimitExceeded          = &Error{Code: CodeLimitExceeded}
	ErrInsufficientSignatures = &Error{Code: CodeInsufficientSignatures}
	ErrComplianceViolation    = &Error{Code: CodeComplianceViolation}
	ErrUnauthenticated        = &Error{Code: CodeUnauthenticated}
	ErrProposalNotFound       = &Error{Code: CodeProposalNotFound}
	ErrSubAccountNotFound     = &Error{Code: CodeSubAccountNotFound}
	ErrMultiSigNotConfigured  = &Error{Code: CodeMultiSigNotConfigured}
	ErrProposalNotPending     = &Error{Code: CodeProposalNotPending}
	ErrStorageUnavailable     = &Error{Code: CodeStorageUnavailable}
	ErrSubmissionFailed       = &Error{Code: CodeSubmissionFailed}
)

// NewError builds a domain error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a domain error that wraps a lower-level cause.
func WrapError(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// With returns a copy of e carrying an additional detail entry.
func (e *Error) With(key string, value any) *Error {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

// Kind returns the kind of the error's code.
func (e *Error) Kind() ErrorKind { return e.Code.Kind() }

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Details[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports code equality so sentinels match any error of the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
