// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// Package client provides a typed Go client for the governance request
// surface. It talks either to a running server over HTTP or to an
// in-process service, and is used by integration tests and
// tooling in this module.
package client
