// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the soroban-trader command-line interface using
// Cobra. It wires configuration and the default services, then hands every
// governance command to the JSON request surface of internal/core. CLI code
// stays thin: business rules live in core and the packages below it.
package cli
