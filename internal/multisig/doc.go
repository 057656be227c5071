// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package multisig holds the signer registry, the quorum evaluator and the
// proposal lifecycle.
//
// Every function here is a pure computation over model values: callers
// (the core facade) own persistence and serialization per wallet. Functions
// that mutate a proposal validate everything first and only then touch the
// proposal, so a returned error always means the proposal is unchanged.
package multisig
