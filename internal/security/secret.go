// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds the redacting wrapper used for authentication
// secrets while they travel from the request surface to the identity store.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret carries a caller's authentication secret. Printing, formatting and
// JSON encoding never reveal the underlying bytes.
type Secret []byte

// FromString copies in into a new Secret.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes copies in into a new Secret.
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}

func (s Secret) String() string { return redacted }

// Format redacts every verb, including %#v.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts the secret in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// UnmarshalJSON accepts the plain string form sent by callers.
func (s *Secret) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = FromString(raw)
	return nil
}

// Empty reports whether no secret was supplied.
func (s Secret) Empty() bool { return len(s) == 0 }

// Use runs fn against the underlying bytes without copying them.
func (s Secret) Use(fn func([]byte) error) error { return fn([]byte(s)) }

// Zero overwrites the secret in place.
func (s *Secret) Zero() {
	if s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}
